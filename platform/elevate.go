package platform

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ElevationCommand builds the argv that relaunches exe with args under
// elevated privilege on goos.
func ElevationCommand(goos, exe string, args []string) ([]string, error) {
	switch goos {
	case "darwin":
		script := fmt.Sprintf("do shell script %s with administrator privileges",
			appleScriptQuote(shellJoin(append([]string{exe}, args...))))
		return []string{"osascript", "-e", script}, nil
	case "windows":
		ps := "Start-Process -FilePath " + powershellQuote(exe) + " -Verb RunAs"
		if len(args) > 0 {
			quoted := make([]string, len(args))
			for i, a := range args {
				quoted[i] = powershellQuote(a)
			}
			ps += " -ArgumentList " + strings.Join(quoted, ",")
		}
		return []string{"powershell", "-NoProfile", "-Command", ps}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return append([]string{"pkexec", exe}, args...), nil
	}
	return nil, fmt.Errorf("elevation on %s: %w", goos, errors.ErrUnsupported)
}

// RequestElevationAndRestart starts an elevated copy of the running program.
// The caller is expected to exit once it returns nil; a denied prompt simply
// means no elevated instance appears.
func RequestElevationAndRestart() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	argv, err := ElevationCommand(runtime.GOOS, exe, os.Args[1:])
	if err != nil {
		return err
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", argv[0], err)
	}
	return cmd.Process.Release()
}

func shellJoin(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
	}
	return strings.Join(quoted, " ")
}

func appleScriptQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func powershellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
