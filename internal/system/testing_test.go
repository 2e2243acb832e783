package system

import (
	"context"
	"strings"
)

// recordingExecutor remembers every command instead of running it.
type recordingExecutor struct {
	commands []string
	err      error
}

func (r *recordingExecutor) Run(_ context.Context, name string, args ...string) error {
	r.commands = append(r.commands, strings.Join(append([]string{name}, args...), " "))

	return r.err
}
