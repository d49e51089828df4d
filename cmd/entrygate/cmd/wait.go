package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/entrygate/entrygate/internal/probe"
	"github.com/entrygate/entrygate/internal/supervisor"
)

// waitCmd runs stage 1 on its own: block until every configured
// dependency is reachable, then exit 0. Useful in init containers that
// split waiting from migrating.
var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Block until all configured dependencies are reachable",
	RunE:  runWait,
}

func init() {
	rootCmd.AddCommand(waitCmd)
}

func runWait(cmd *cobra.Command, args []string) error {
	cfg := loadConfigOrExit()
	log := newLogger(cfg)

	ctx, cancel := signalContext()
	defer cancel()

	prober := probe.New(cfg.PollInterval, cfg.DialTimeout, log)

	if err := prober.WaitAll(ctx, cfg.Endpoints()); err != nil {
		log.Error(err.Error())
		os.Exit(supervisor.ExitFailure)
	}
	if cfg.PostgresDSN != "" {
		if err := prober.WaitPostgres(ctx, cfg.PostgresDSN); err != nil {
			log.Error(err.Error())
			os.Exit(supervisor.ExitFailure)
		}
	}
	return nil
}
