package system

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/oshokin/wgdisplay-installer/internal/logger"
)

// HostnameFile holds the static hostname read at boot.
const HostnameFile = "/etc/hostname"

// autologinTemplate is the getty drop-in; %s is the user name.
const autologinTemplate = `[Service]
ExecStart=
ExecStart=-/sbin/agetty --autologin %s --noclear %%I $TERM
`

// MakeExecutable marks path executable with chmod.
func MakeExecutable(ctx context.Context, executor Executor, path string) error {
	logger.InfoKV(ctx, "Making release executable", "path", path)

	return executor.Run(ctx, "chmod", "+x", path)
}

// InstallPackage installs pkg with apt-get, without prompting.
func InstallPackage(ctx context.Context, executor Executor, pkg string) error {
	logger.InfoKV(ctx, "Installing package", "package", pkg)

	return executor.Run(ctx, "apt-get", "install", "-y", pkg)
}

// SetHostname overwrites /etc/hostname with name.
func SetHostname(ctx context.Context, executor Executor, name string) error {
	logger.Infof(ctx, "Changing hostname to %s", name)

	return Shell(ctx, executor, redirect(name+"\n", HostnameFile))
}

// AutologinOverride returns the getty drop-in logging user in on the console.
func AutologinOverride(user string) string {
	return fmt.Sprintf(autologinTemplate, user)
}

// ConfigureAutologin writes the getty drop-in at overridePath.
// The file is overwritten unconditionally.
func ConfigureAutologin(ctx context.Context, executor Executor, user, overridePath string) error {
	logger.InfoKV(ctx, "Configuring console autologin", "user", user, "override", overridePath)

	if err := executor.Run(ctx, "mkdir", "-p", filepath.Dir(overridePath)); err != nil {
		return err
	}

	return Shell(ctx, executor, redirect(AutologinOverride(user), overridePath))
}
