package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
)

// Launcher opens web pages in the user's browser
type Launcher struct {
	command string   // configured browser command, empty for system default
	args    []string // additional arguments placed before the URL
	logger  *slog.Logger

	start func(cmd *exec.Cmd) error
}

// NewLauncher creates a launcher. An empty command uses the OS opener.
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command: strings.TrimSpace(command),
		args:    args,
		logger:  logger,
		start:   func(cmd *exec.Cmd) error { return cmd.Start() },
	}
}

// Open launches url without waiting for the browser to exit
func (l *Launcher) Open(url string) error {
	cmd, err := l.buildCommand(url)
	if err != nil {
		return err
	}

	l.logger.Info("opening url", "command", cmd.Path, "url", url)
	if err := l.start(cmd); err != nil {
		l.logger.Error("failed to open url", "url", url, "error", err)
		return fmt.Errorf("failed to open %s: %w", url, err)
	}

	// Reap the child in the background
	if cmd.Process != nil {
		go cmd.Wait()
	}
	return nil
}

// buildCommand builds the command for the configured browser or the system opener
func (l *Launcher) buildCommand(url string) (*exec.Cmd, error) {
	if l.command != "" {
		if _, err := exec.LookPath(l.command); err != nil {
			return nil, fmt.Errorf("browser %q not found: %w", l.command, err)
		}
		args := append(append([]string{}, l.args...), url)
		return exec.Command(l.command, args...), nil
	}

	name, args := systemOpener(runtime.GOOS)
	return exec.Command(name, append(args, url)...), nil
}

// systemOpener returns the default URL opener for an OS
func systemOpener(goos string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		return "xdg-open", nil
	}
}
