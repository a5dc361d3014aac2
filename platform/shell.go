// Package platform wraps the host desktop: default-application launching,
// revealing items in the system file browser, the text clipboard, and
// privilege elevation.
package platform

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Verb names a shell integration.
type Verb string

const (
	VerbOpen         Verb = "open"
	VerbOpenElevated Verb = "open-elevated"
	VerbReveal       Verb = "reveal"
)

// CommandFor returns the argv that performs verb on path for goos.
func CommandFor(goos string, verb Verb, path string) ([]string, error) {
	switch verb {
	case VerbOpen:
		switch goos {
		case "darwin":
			return []string{"open", path}, nil
		case "windows":
			return []string{"cmd", "/c", "start", "", path}, nil
		default:
			return []string{"xdg-open", path}, nil
		}
	case VerbOpenElevated:
		switch goos {
		case "darwin":
			return []string{"sudo", "open", path}, nil
		case "windows":
			return []string{"runas", "/user:Administrator", path}, nil
		default:
			return []string{"sudo", "xdg-open", path}, nil
		}
	case VerbReveal:
		switch goos {
		case "darwin":
			// open -R reveals in Finder with the item selected
			return []string{"open", "-R", path}, nil
		case "windows":
			return []string{"explorer", "/select,", path}, nil
		default:
			// xdg-open cannot select an item, open the parent instead
			return []string{"xdg-open", filepath.Dir(path)}, nil
		}
	}
	return nil, fmt.Errorf("unknown shell verb %q", verb)
}

// Runner executes an argv and waits for it.
type Runner func(ctx context.Context, argv []string) error

// Shell launches desktop integrations for paths.
type Shell struct {
	goos string
	run  Runner
}

func NewShell() *Shell {
	return &Shell{goos: runtime.GOOS, run: runCommand}
}

// NewShellWith is used by tests to substitute the OS and the runner.
func NewShellWith(goos string, run Runner) *Shell {
	return &Shell{goos: goos, run: run}
}

func (s *Shell) Do(ctx context.Context, verb Verb, path string) error {
	argv, err := CommandFor(s.goos, verb, path)
	if err != nil {
		return err
	}
	return s.run(ctx, argv)
}

func runCommand(ctx context.Context, argv []string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(output)); msg != "" {
			return fmt.Errorf("%s: %w: %s", argv[0], err, msg)
		}
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}
