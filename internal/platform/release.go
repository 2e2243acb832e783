package platform

import "strings"

const (
	// ReleaseARMv6 is built for the original Raspberry Pi and the Pi Zero.
	ReleaseARMv6 = "wg-display-arm-unknown-linux-gnueabihf"
	// ReleaseARMv7 is built for the Raspberry Pi 2 and newer running a 32-bit OS.
	ReleaseARMv7 = "wg-display-armv7-unknown-linux-gnueabihf"
)

// UnsupportedArchitectureError is returned for machines no release is built for.
type UnsupportedArchitectureError struct {
	Machine string
}

func (e *UnsupportedArchitectureError) Error() string {
	return "Unsupported architecture: " + e.Machine
}

// ResolveRelease returns the artifact name for the machine identifier,
// e.g. "armv7l" or "armv8l". Matching is by substring, first match wins.
func ResolveRelease(machine string) (string, error) {
	switch {
	case strings.Contains(machine, "armv6"):
		return ReleaseARMv6, nil
	case strings.Contains(machine, "armv7"), strings.Contains(machine, "armv8"):
		return ReleaseARMv7, nil
	default:
		return "", &UnsupportedArchitectureError{Machine: machine}
	}
}
