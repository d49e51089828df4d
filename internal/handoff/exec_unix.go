//go:build unix

package handoff

import (
	"os"

	"golang.org/x/sys/unix"
)

// execImage replaces the current process image in place. Same PID, same
// stdio, same working directory; the environment is inherited
// explicitly because execve requires it.
func execImage(path string, argv []string) error {
	return unix.Exec(path, argv, os.Environ())
}
