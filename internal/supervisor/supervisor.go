// Package supervisor sequences the three startup stages: readiness
// gating, migration, process handoff. Each stage gates the next; there
// is no concurrency, no recovery, and nothing left running afterwards.
package supervisor

import (
	"context"
	"fmt"

	"github.com/entrygate/entrygate/internal/config"
	"github.com/entrygate/entrygate/pkg/logging"
)

// Exit codes for the failure paths. The success path has no code of its
// own: after handoff the observed exit code belongs to the service.
const (
	ExitFailure = 1   // interrupted wait, tool could not start
	ExitConfig  = 2   // configuration error
	ExitHandoff = 127 // command missing or not executable
)

// Prober gates startup on dependency reachability.
type Prober interface {
	WaitAll(ctx context.Context, endpoints []config.Endpoint) error
	WaitPostgres(ctx context.Context, dsn string) error
}

// Migrator runs the external migration tool once and reports its exit code.
type Migrator interface {
	Run(ctx context.Context) (int, error)
}

// ExecFunc replaces the current process with argv; it only ever returns
// on failure.
type ExecFunc func(argv []string) error

// Supervisor wires the stages together.
type Supervisor struct {
	cfg    *config.Config
	prober Prober
	runner Migrator
	exec   ExecFunc
	log    *logging.Logger
}

// New creates a supervisor over the given stages
func New(cfg *config.Config, prober Prober, runner Migrator, exec ExecFunc, log *logging.Logger) *Supervisor {
	return &Supervisor{
		cfg:    cfg,
		prober: prober,
		runner: runner,
		exec:   exec,
		log:    log,
	}
}

// Run executes the full sequence with the payload argv. On success it
// never returns: the process image is the service's by then. On failure
// it returns the exit code the supervisor should die with.
func (s *Supervisor) Run(ctx context.Context, argv []string) (int, error) {
	if len(argv) == 0 {
		return ExitHandoff, fmt.Errorf("no command to supervise")
	}

	// Stage 1: readiness gate
	if err := s.prober.WaitAll(ctx, s.cfg.Endpoints()); err != nil {
		return ExitFailure, err
	}
	if s.cfg.PostgresDSN != "" {
		if err := s.prober.WaitPostgres(ctx, s.cfg.PostgresDSN); err != nil {
			return ExitFailure, err
		}
	}

	// Stage 2: migrations. A non-zero tool exit is fatal and becomes
	// the supervisor's own exit code; handoff must not happen.
	if s.cfg.SkipMigrations {
		s.log.Info("skipping migrations (MIGRATE_SKIP is set)")
	} else {
		code, err := s.runner.Run(ctx)
		if err != nil {
			return ExitFailure, err
		}
		if code != 0 {
			return code, fmt.Errorf("migration tool exited with code %d", code)
		}
	}

	// Stage 3: handoff. Never returns unless the exec itself failed.
	s.log.Info("handing off to service", map[string]interface{}{
		"command": argv,
	})
	if err := s.exec(argv); err != nil {
		return ExitHandoff, err
	}

	// Unreachable on unix; the fallback path exits inside exec
	return 0, nil
}
