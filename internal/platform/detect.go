package platform

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// Info describes the device the installer runs on.
type Info struct {
	// Machine is the kernel machine identifier, as printed by `uname -m`.
	Machine string
	// Platform is the distribution ID (e.g. "raspbian"), empty if unknown.
	Platform string
	// Version is the distribution version, empty if unknown.
	Version string
}

// Detector reports the device information.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// HostDetector reads the information from the running kernel via gopsutil.
type HostDetector struct{}

// NewDetector returns a Detector for the running host.
func NewDetector() *HostDetector {
	return &HostDetector{}
}

// Detect returns the machine identifier and, when available, the distribution.
// Distribution lookup failures are ignored since only the machine matters.
func (d *HostDetector) Detect(ctx context.Context) (*Info, error) {
	machine, err := host.KernelArch()
	if err != nil {
		return nil, fmt.Errorf("detect kernel architecture: %w", err)
	}

	info := &Info{Machine: strings.TrimSpace(machine)}

	platform, _, version, err := host.PlatformInformationWithContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}

		return info, nil
	}

	info.Platform = strings.ToLower(strings.TrimSpace(platform))
	info.Version = strings.TrimSpace(version)

	return info, nil
}

// StaticDetector reports a fixed machine identifier, used for overrides.
type StaticDetector struct {
	Machine string
}

// Detect returns the configured machine identifier.
func (d StaticDetector) Detect(context.Context) (*Info, error) {
	return &Info{Machine: d.Machine}, nil
}
