package migrate

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/entrygate/entrygate/pkg/logging"
)

// Runner invokes the external schema-migration tool. The tool is
// opaque: the runner passes its argv through verbatim, inherits the
// environment and stdio, and only interprets the exit code.
// Idempotency ("upgrade to latest is a no-op when already at latest")
// is the tool's contract, not verified here.
type Runner struct {
	argv []string
	log  *logging.Logger
}

// New creates a runner for the given tool argv
func New(argv []string, log *logging.Logger) *Runner {
	return &Runner{argv: argv, log: log}
}

// Run executes the migration tool exactly once, synchronously, and
// returns its exit code. A non-zero code is not an error from Run's
// perspective; the caller decides that it is fatal. The returned error
// is non-nil only when the tool could not be started at all.
func (r *Runner) Run(ctx context.Context) (int, error) {
	if len(r.argv) == 0 {
		return -1, fmt.Errorf("no migration command configured")
	}

	r.log.Info("running migrations", map[string]interface{}{
		"command": r.argv,
	})
	start := time.Now()

	cmd := exec.CommandContext(ctx, r.argv[0], r.argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	elapsed := time.Since(start).Round(time.Millisecond)

	if err == nil {
		r.log.Info("migrations applied", map[string]interface{}{
			"elapsed": elapsed.String(),
		})
		return 0, nil
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		code := exitErr.ExitCode()
		r.log.Error("migration tool failed", map[string]interface{}{
			"exit_code": code,
			"elapsed":   elapsed.String(),
		})
		return code, nil
	}

	// The tool never ran: missing binary, permission problem, or the
	// context was cancelled before start
	return -1, fmt.Errorf("failed to run %q: %w", r.argv[0], err)
}
