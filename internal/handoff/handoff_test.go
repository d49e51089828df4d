package handoff

import (
	"errors"
	"strings"
	"testing"
)

// A successful Exec replaces the test process, so only the failure
// paths are testable here. The success-path contract (exact argv, same
// environment) is covered at the supervisor level with an injected
// exec function.

func TestExec_EmptyCommand(t *testing.T) {
	err := Exec(nil)
	if !errors.Is(err, ErrEmptyCommand) {
		t.Errorf("Expected ErrEmptyCommand, got: %v", err)
	}

	err = Exec([]string{})
	if !errors.Is(err, ErrEmptyCommand) {
		t.Errorf("Expected ErrEmptyCommand, got: %v", err)
	}
}

func TestExec_CommandNotFound(t *testing.T) {
	err := Exec([]string{"entrygate-no-such-service-binary"})
	if err == nil {
		t.Fatal("Expected an error for a missing executable")
	}
	if !strings.Contains(err.Error(), "cannot exec") {
		t.Errorf("Expected a resolution error, got: %v", err)
	}
}
