package installer

import (
	"context"
	"fmt"

	"github.com/oshokin/wgdisplay-installer/internal/config"
	"github.com/oshokin/wgdisplay-installer/internal/logger"
	"github.com/oshokin/wgdisplay-installer/internal/platform"
	"github.com/oshokin/wgdisplay-installer/internal/release"
	"github.com/oshokin/wgdisplay-installer/internal/service/power"
	"github.com/oshokin/wgdisplay-installer/internal/startup"
	"github.com/oshokin/wgdisplay-installer/internal/system"
)

// Options are inputs accepted by the installer entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// Machine overrides the detected machine identifier.
	Machine string
}

// Installer holds the collaborators of one installation run.
type Installer struct {
	Config   *config.Config
	Detector platform.Detector
	Fetcher  *release.Fetcher
	Executor system.Executor
	// StopRunning terminates displays started from the install path.
	StopRunning func(ctx context.Context, target string) (int, error)
}

// Run loads the settings and provisions the device. It is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "installer")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if opts.Machine != "" {
		cfg.Machine = opts.Machine
	}

	return New(cfg).Install(ctx)
}

// New wires an Installer for the local host.
func New(cfg *config.Config) *Installer {
	var detector platform.Detector = platform.NewDetector()
	if cfg.Machine != "" {
		detector = platform.StaticDetector{Machine: cfg.Machine}
	}

	return &Installer{
		Config:      cfg,
		Detector:    detector,
		Fetcher:     release.NewFetcher(cfg.ReleaseURL, release.WithTimeout(cfg.DownloadTimeout)),
		Executor:    system.NewCommandExecutor(!cfg.SkipSudo),
		StopRunning: release.StopRunning,
	}
}

// Install executes the pipeline. It returns an error only when the release
// cannot be resolved or downloaded, or when the context is cancelled.
func (i *Installer) Install(ctx context.Context) error {
	logger.Info(ctx, "Welcome to WG Display installer")

	artifact, err := i.resolveRelease(ctx)
	if err != nil {
		return err
	}

	if err = i.download(ctx, artifact); err != nil {
		return err
	}

	i.bestEffort(ctx, "make executable",
		system.MakeExecutable(ctx, i.Executor, i.Config.InstallPath))

	i.bestEffort(ctx, "install package",
		system.InstallPackage(ctx, i.Executor, i.Config.Package))

	_, err = startup.Patch(ctx, i.Config.StartupFile, i.Config.StartupLines)
	i.bestEffort(ctx, "patch startup file", err)

	i.bestEffort(ctx, "change hostname",
		system.SetHostname(ctx, i.Executor, i.Config.Hostname))

	i.bestEffort(ctx, "configure autologin",
		system.ConfigureAutologin(ctx, i.Executor, i.Config.AutologinUser, i.Config.AutologinOverride))

	if err = ctx.Err(); err != nil {
		return fmt.Errorf("installation interrupted: %w", err)
	}

	if err = power.Reboot(ctx, i.Executor, i.Config.RebootDelay); err != nil {
		if ctx.Err() != nil {
			return err
		}

		i.bestEffort(ctx, "reboot", err)
	}

	return nil
}

// resolveRelease maps the detected machine to an artifact name.
func (i *Installer) resolveRelease(ctx context.Context) (string, error) {
	info, err := i.Detector.Detect(ctx)
	if err != nil {
		return "", fmt.Errorf("detect platform: %w", err)
	}

	logger.InfoKV(ctx, "Detected platform",
		"machine", info.Machine, "platform", info.Platform, "version", info.Version)

	artifact, err := platform.ResolveRelease(info.Machine)
	if err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Resolved release", "artifact", artifact)

	return artifact, nil
}

// download fetches the artifact and swaps it in at the install path.
// A previous display keeps running until the new binary is in hand.
func (i *Installer) download(ctx context.Context, artifact string) error {
	logger.Info(ctx, "Downloading release...")

	body, err := i.Fetcher.Fetch(ctx, artifact)
	if err != nil {
		return fmt.Errorf("%w: %w", release.ErrDownloadFailed, err)
	}

	i.stopRunningDisplay(ctx)

	err = release.Install(ctx, body, i.Config.InstallPath, i.Config.ChecksumFor(artifact))
	if err != nil {
		return fmt.Errorf("%w: %w", release.ErrDownloadFailed, err)
	}

	logger.InfoKV(ctx, "Downloaded release: "+artifact, "path", i.Config.InstallPath, "bytes", len(body))

	return nil
}

// stopRunningDisplay terminates a display started by a previous install.
func (i *Installer) stopRunningDisplay(ctx context.Context) {
	if i.StopRunning == nil {
		return
	}

	stopped, err := i.StopRunning(ctx, i.Config.InstallPath)
	if err != nil {
		logger.WarnKV(ctx, "Could not stop running display", "error", err)
		return
	}

	if stopped > 0 {
		logger.InfoKV(ctx, "Stopped previous display", "count", stopped)
	}
}

// bestEffort logs a failed step without stopping the pipeline.
func (i *Installer) bestEffort(ctx context.Context, step string, err error) {
	if err != nil {
		logger.WarnKV(ctx, "Step failed, continuing", "step", step, "error", err)
	}
}
