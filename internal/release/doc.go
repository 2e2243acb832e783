// Package release downloads a WG Display release artifact and installs it.
//
// The artifact body is received in full before the install path is touched,
// then swapped in atomically with go-update. A failed download leaves the
// previous binary (or nothing) in place, never a partial file.
package release
