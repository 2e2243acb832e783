package release

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/wgdisplay-installer/internal/logger"
)

// maxProcessNameLength is how much of an executable name Linux keeps in
// /proc/<pid>/stat, which is where the process list reads it from.
const maxProcessNameLength = 15

// StopRunning kills processes running the executable at target, so that a
// reinstall takes effect on the next login. It returns how many were stopped.
func StopRunning(ctx context.Context, target string) (int, error) {
	name := filepath.Base(target)

	processList, err := ps.Processes()
	if err != nil {
		return 0, fmt.Errorf("list processes: %w", err)
	}

	thisProcessID := os.Getpid()
	stopped := 0

	for _, process := range processList {
		if process.Pid() == thisProcessID || !matchesExecutable(process.Executable(), name) {
			continue
		}

		runningProcess, err := os.FindProcess(process.Pid())
		if err != nil {
			return stopped, fmt.Errorf("find process %d: %w", process.Pid(), err)
		}

		if err = runningProcess.Kill(); err != nil {
			return stopped, fmt.Errorf("kill process %d: %w", process.Pid(), err)
		}

		logger.InfoKV(ctx, "Stopped running display", "pid", process.Pid())

		stopped++
	}

	return stopped, nil
}

// matchesExecutable reports whether a listed process name refers to name,
// allowing for the kernel truncating long names.
func matchesExecutable(processName, name string) bool {
	if processName == name {
		return true
	}

	return len(name) > maxProcessNameLength &&
		len(processName) >= maxProcessNameLength &&
		strings.HasPrefix(name, processName)
}
