package system

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/alessio/shellescape"

	"github.com/oshokin/wgdisplay-installer/internal/logger"
)

// Executor runs system commands.
type Executor interface {
	// Run executes name with args and waits for it to finish.
	Run(ctx context.Context, name string, args ...string) error
}

// CommandExecutor runs commands on the local host, optionally through sudo.
type CommandExecutor struct {
	// Sudo prefixes every command with sudo.
	Sudo bool
	// Stdout and Stderr receive the command output; nil discards it.
	Stdout io.Writer
	Stderr io.Writer
}

// NewCommandExecutor returns an executor forwarding output to the terminal.
func NewCommandExecutor(sudo bool) *CommandExecutor {
	return &CommandExecutor{
		Sudo:   sudo,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes the command and reports a non-zero exit as an error.
func (e *CommandExecutor) Run(ctx context.Context, name string, args ...string) error {
	argv := e.argv(name, args...)

	logger.DebugKV(ctx, "Running command", "command", shellescape.QuoteCommand(argv))

	//nolint:gosec // Commands are built from fixed names and quoted values.
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", shellescape.QuoteCommand(argv), err)
	}

	return nil
}

// argv returns the full command line, with sudo first when elevated.
func (e *CommandExecutor) argv(name string, args ...string) []string {
	argv := make([]string, 0, len(args)+2) //nolint:mnd // sudo and name.
	if e.Sudo {
		argv = append(argv, "sudo")
	}

	return append(append(argv, name), args...)
}

// Shell runs script with `sh -c` through the executor.
func Shell(ctx context.Context, executor Executor, script string) error {
	return executor.Run(ctx, "sh", "-c", script)
}

// redirect builds a script writing content to path, replacing it.
func redirect(content, path string) string {
	var b strings.Builder

	b.WriteString("printf '%s' ")
	b.WriteString(shellescape.Quote(content))
	b.WriteString(" > ")
	b.WriteString(shellescape.Quote(path))

	return b.String()
}
