// Package handoff replaces the supervisor with the real service
// command. After a successful handoff the supervisor no longer exists:
// the service owns the PID, the stdio streams, the environment, and the
// container's signal and exit-code plumbing.
package handoff

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrEmptyCommand is returned when there is no command to hand off to.
var ErrEmptyCommand = errors.New("no command to exec")

// Exec hands the process over to argv. On success it never returns.
// The argument vector is passed through unmodified; there is no
// fallback command.
func Exec(argv []string) error {
	if len(argv) == 0 {
		return ErrEmptyCommand
	}

	path, err := exec.LookPath(argv[0])
	if err != nil {
		return fmt.Errorf("cannot exec %q: %w", argv[0], err)
	}

	return execImage(path, argv)
}
