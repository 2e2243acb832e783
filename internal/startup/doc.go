// Package startup appends the WG Display launch commands to a login shell
// startup file such as ~/.bashrc, at most once.
package startup
