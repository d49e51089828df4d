package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/entrygate/entrygate/internal/config"
	"github.com/entrygate/entrygate/internal/handoff"
	"github.com/entrygate/entrygate/internal/migrate"
	"github.com/entrygate/entrygate/internal/probe"
	"github.com/entrygate/entrygate/internal/supervisor"
	"github.com/entrygate/entrygate/pkg/logging"
)

var (
	cfgFile      string
	outputFormat string
)

// rootCmd represents the base command: the full startup sequence.
// Everything after -- is the service command and passes through
// untouched; entrygate's own configuration comes from the environment.
var rootCmd = &cobra.Command{
	Use:   "entrygate [flags] -- <command> [args...]",
	Short: "Container entrypoint supervisor",
	Long: `entrygate gates a container's startup: it waits until the configured
dependencies are reachable, runs the schema-migration tool exactly once,
and then replaces itself with the real service command.

After a successful handoff entrygate no longer exists as a process. The
service inherits the PID, the stdio streams, the environment, and the
working directory, so container signal delivery and exit-code reporting
apply to the service itself.

Example:
  DB_HOST=db DB_PORT=5432 entrygate -- myservice --port 8080`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runSupervise,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "endpoints config file (YAML, adds wait targets)")
}

func runSupervise(cmd *cobra.Command, args []string) error {
	cfg := loadConfigOrExit()
	log := newLogger(cfg)

	ctx, cancel := signalContext()
	defer cancel()

	prober := probe.New(cfg.PollInterval, cfg.DialTimeout, log)
	runner := migrate.New(cfg.MigrateCommand, log)
	sup := supervisor.New(cfg, prober, runner, handoff.Exec, log)

	code, err := sup.Run(ctx, args)
	if err != nil {
		log.Error(err.Error())
		os.Exit(code)
	}
	return nil
}

// loadConfigOrExit loads configuration and dies with the configuration
// exit code on failure. Polling against an empty endpoint forever is
// worse than failing loudly here.
func loadConfigOrExit() *config.Config {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "entrygate: configuration error: %v\n", err)
		os.Exit(supervisor.ExitConfig)
	}
	return cfg
}

func newLogger(cfg *config.Config) *logging.Logger {
	return logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat == "json")
}

// signalContext returns a context cancelled on SIGTERM/SIGINT so an
// interrupted wait stops cleanly instead of dying mid-poll.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintf(os.Stderr, "\nentrygate: received signal, aborting startup\n")
		cancel()
	}()

	return ctx, cancel
}
