// Package version exposes build metadata of the installer.
//
// Version, Commit and BuildTime are injected with -ldflags at release time.
// The version string is also sent as the User-Agent of release downloads.
package version
