// Package system runs the operating system commands of the installation:
// permission changes, package installation, hostname and autologin setup.
//
// Commands go through an Executor so they can be elevated with sudo
// or recorded in tests. Scripts passed to
// `sh -c` quote every interpolated value with shellescape.
package system
