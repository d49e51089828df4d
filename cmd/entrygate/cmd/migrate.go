package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/entrygate/entrygate/internal/migrate"
	"github.com/entrygate/entrygate/internal/supervisor"
)

// migrateCmd runs stage 2 on its own: invoke the migration tool once
// and propagate its exit code. No waiting, no handoff.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run the configured migration tool once and exit with its code",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg := loadConfigOrExit()
	log := newLogger(cfg)

	ctx, cancel := signalContext()
	defer cancel()

	runner := migrate.New(cfg.MigrateCommand, log)
	code, err := runner.Run(ctx)
	if err != nil {
		log.Error(err.Error())
		os.Exit(supervisor.ExitFailure)
	}
	if code != 0 {
		os.Exit(code)
	}
	return nil
}
