// Package platform maps the machine identifier reported by the kernel
// to the name of the matching WG Display release artifact.
package platform
