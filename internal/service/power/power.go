// Package power restarts the device once provisioning is complete.
package power

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/oshokin/wgdisplay-installer/internal/logger"
	"github.com/oshokin/wgdisplay-installer/internal/system"
)

// ErrUnsupportedOS indicates the current OS cannot be rebooted by the installer.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// Reboot waits for delay, then issues `reboot` through the executor.
// The wait ends early if the context is cancelled, in which case no
// reboot is issued.
func Reboot(ctx context.Context, executor system.Executor, delay time.Duration) error {
	if runtime.GOOS != "linux" {
		return fmt.Errorf("reboot on %s: %w", runtime.GOOS, ErrUnsupportedOS)
	}

	logger.InfoKV(ctx, "Rebooting...", "delay", delay)

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return fmt.Errorf("reboot cancelled: %w", ctx.Err())
		}
	}

	return executor.Run(ctx, "reboot")
}
