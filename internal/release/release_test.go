package release

import (
	"context"
	"crypto/sha256"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/wgdisplay-installer/internal/version"
)

const artifact = "wg-display-armv7-unknown-linux-gnueabihf"

// newReleaseServer serves body for the artifact to clients sending the installer User-Agent.
func newReleaseServer(t *testing.T, body []byte) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/latest/download/"+artifact, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != version.UserAgent() {
			http.Error(w, "unexpected user agent", http.StatusBadRequest)
			return
		}

		_, _ = w.Write(body)
	})
	// GitHub answers "latest" downloads with a redirect to the tagged asset.
	mux.HandleFunc("/redirect/"+artifact, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/latest/download/"+artifact, http.StatusFound)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

// TestFetcherURL joins the folder and the artifact name.
func TestFetcherURL(t *testing.T) {
	t.Parallel()

	fetcher := NewFetcher("https://github.com/eliabieri/wg_display/releases/latest/download/")

	got, err := fetcher.URL(artifact)
	require.NoError(t, err)
	require.Equal(t, "https://github.com/eliabieri/wg_display/releases/latest/download/"+artifact, got)

	_, err = fetcher.URL("")
	require.ErrorIs(t, err, errEmptyArtifact)
}

// TestFetch_Success returns the body and sends the installer User-Agent.
func TestFetch_Success(t *testing.T) {
	t.Parallel()

	server := newReleaseServer(t, []byte("binary"))

	body, err := NewFetcher(server.URL+"/latest/download", WithTimeout(time.Second)).
		Fetch(context.Background(), artifact)
	require.NoError(t, err)
	require.Equal(t, []byte("binary"), body)
}

// TestFetch_FollowsRedirect mirrors the GitHub latest-release redirect.
func TestFetch_FollowsRedirect(t *testing.T) {
	t.Parallel()

	server := newReleaseServer(t, []byte("redirected"))

	body, err := NewFetcher(server.URL+"/redirect").Fetch(context.Background(), artifact)
	require.NoError(t, err)
	require.Equal(t, []byte("redirected"), body)
}

// TestFetch_BadStatus reports non-200 responses.
func TestFetch_BadStatus(t *testing.T) {
	t.Parallel()

	server := newReleaseServer(t, nil)

	_, err := NewFetcher(server.URL+"/missing").Fetch(context.Background(), artifact)
	require.ErrorIs(t, err, errBadHTTPStatus)
}

// TestInstall_WritesExecutable installs a fresh binary with mode 0755.
func TestInstall_WritesExecutable(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "bin", "wgdisplay")

	err := Install(context.Background(), []byte("new-binary"), target, nil)
	require.NoError(t, err)

	contents, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, []byte("new-binary"), contents)

	info, err := os.Stat(target)
	require.NoError(t, err)
	require.Equal(t, ExecutableMode, info.Mode().Perm())
}

// TestInstall_ReplacesExisting overwrites a previous install and leaves no swap files behind.
func TestInstall_ReplacesExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "wgdisplay")
	require.NoError(t, os.WriteFile(target, []byte("old-binary"), 0o600))

	sum := sha256.Sum256([]byte("new-binary"))

	err := Install(context.Background(), []byte("new-binary"), target, sum[:])
	require.NoError(t, err)

	contents, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, []byte("new-binary"), contents)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

// TestFetch_NetworkFailure reports an unreachable release host.
func TestFetch_NetworkFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	body, err := NewFetcher(server.URL).Fetch(context.Background(), artifact)
	require.Error(t, err)
	require.Nil(t, body)
}

// TestInstall_ChecksumMismatch rejects the artifact and removes the placeholder.
func TestInstall_ChecksumMismatch(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "wgdisplay")
	sum := sha256.Sum256([]byte("expected"))

	err := Install(context.Background(), []byte("tampered"), target, sum[:])
	require.Error(t, err)

	_, err = os.Stat(target)
	require.ErrorIs(t, err, os.ErrNotExist)
}
