// Package opener hands artifacts to the host's default application.
//
// Opening is fire-and-forget: the viewer or player is started detached and
// stagehand does not wait for it. Failures are reported but callers treat
// them as non-fatal; a run that produced artifacts is still a good run even
// when no desktop opener is installed.
package opener

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

var startCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start() //nolint:gosec
}

// Opener launches files with the host default application.
type Opener struct {
	command string
}

// Option configures an Opener.
type Option func(*Opener)

// WithCommand overrides the platform opener binary.
func WithCommand(command string) Option {
	return func(o *Opener) {
		if trimmed := strings.TrimSpace(command); trimmed != "" {
			o.command = trimmed
		}
	}
}

// New constructs an Opener using the platform default unless overridden.
func New(opts ...Option) *Opener {
	o := &Opener{command: platformCommand()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Command returns the opener binary, for preflight availability checks.
// Empty means the platform has no known opener.
func (o *Opener) Command() string {
	return o.command
}

// Open starts the host default application for the given file and returns
// without waiting for it to exit.
func (o *Opener) Open(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path required")
	}
	if o.command == "" {
		return fmt.Errorf("no opener available on %s", runtime.GOOS)
	}
	args := platformArgs(o.command, path)
	if err := startCommand(args[0], args[1:]...); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return nil
}

func platformCommand() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "cmd"
	default:
		return ""
	}
}

func platformArgs(command, path string) []string {
	if command == "cmd" && runtime.GOOS == "windows" {
		return []string{"cmd", "/c", "start", "", path}
	}
	return []string{command, path}
}
