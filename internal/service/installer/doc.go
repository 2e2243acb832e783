// Package installer provisions a Raspberry Pi as a WG Display.
//
// The pipeline runs once, top to bottom: resolve the release for the
// machine, download it, make it executable, install the firewall package,
// patch the login startup file, rename the host, enable console autologin
// and reboot. Only an unsupported architecture or a failed download stop
// it; every later step logs its failure and moves on.
package installer
