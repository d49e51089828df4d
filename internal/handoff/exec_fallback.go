//go:build !unix

package handoff

import (
	"os"
	"os/exec"
	"os/signal"
)

// execImage approximates execve on platforms without it: the command
// runs as a child with inherited stdio, every signal the supervisor
// receives is forwarded to the child, and the supervisor exits with the
// child's exit code. Functionally equivalent to an in-place handoff,
// but there is one extra process between the runtime and the service.
func execImage(path string, argv []string) error {
	cmd := exec.Command(path, argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs)
	defer signal.Stop(sigs)

	go func() {
		for sig := range sigs {
			cmd.Process.Signal(sig)
		}
	}()

	err := cmd.Wait()
	if exitErr, ok := err.(*exec.ExitError); ok {
		os.Exit(exitErr.ExitCode())
	}
	if err != nil {
		return err
	}
	os.Exit(0)
	return nil
}
