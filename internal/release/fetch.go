package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/oshokin/wgdisplay-installer/internal/version"
)

// maxRedirects bounds the GitHub "latest" redirect chain.
const maxRedirects = 10

var (
	errBadHTTPStatus    = errors.New("unexpected http status")
	errTooManyRedirects = errors.New("too many redirects")
	errEmptyArtifact    = errors.New("artifact name is empty")
)

// Fetcher retrieves artifacts from a release folder over HTTP(S).
type Fetcher struct {
	// client performs the requests; redirects are followed.
	client *http.Client
	// baseURL is the folder holding the artifacts.
	baseURL string
	// userAgent is sent with every request.
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout bounds each download.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.client.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the HTTP client, e.g. with an httptest one.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// NewFetcher creates a Fetcher for the release folder at baseURL.
func NewFetcher(baseURL string, opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errTooManyRedirects
				}

				return nil
			},
		},
		baseURL:   baseURL,
		userAgent: version.UserAgent(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// URL returns the download location of the artifact.
func (f *Fetcher) URL(artifact string) (string, error) {
	if artifact == "" {
		return "", errEmptyArtifact
	}

	releaseURL, err := url.Parse(f.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse release URL: %w", err)
	}

	// path.Join normalizes duplicate slashes when composing the URL path.
	releaseURL.Path = path.Join(releaseURL.Path, artifact)

	return releaseURL.String(), nil
}

// Fetch performs a single GET for the artifact and returns its body.
func (f *Fetcher) Fetch(ctx context.Context, artifact string) ([]byte, error) {
	artifactURL, err := f.URL(artifact)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artifactURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	response, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", artifactURL, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", artifactURL, response.Status, errBadHTTPStatus)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", artifactURL, err)
	}

	return body, nil
}
