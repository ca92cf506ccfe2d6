package baseline

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aretw0/shipyard/pkg/domain"
)

// HTTPFetcher fetches locations relative to a base URL.
type HTTPFetcher struct {
	base   *url.URL
	client *http.Client
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) HTTPOption {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.client = &http.Client{Timeout: d}
		}
	}
}

// NewHTTPFetcher creates a fetcher resolving locations against baseURL.
// The base is treated as a directory even without a trailing slash.
func NewHTTPFetcher(baseURL string, opts ...HTTPOption) (*HTTPFetcher, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid baseline url %q: %w", baseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid baseline url %q: scheme must be http or https", baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	f := &HTTPFetcher{
		base:   base,
		client: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Fetch performs a GET on the resolved location. Non-2xx responses are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, location string) (string, error) {
	ref, err := url.Parse(location)
	if err != nil {
		return "", &domain.FetchError{Location: location, Err: err}
	}
	target := f.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return "", &domain.FetchError{Location: location, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &domain.FetchError{Location: location, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &domain.FetchError{Location: location, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.FetchError{Location: location, Err: err}
	}
	return string(body), nil
}

// FSFetcher reads locations from a file system, typically os.DirFS of a
// local snapshot directory.
type FSFetcher struct {
	fsys fs.FS
}

// NewFSFetcher creates a fetcher over fsys.
func NewFSFetcher(fsys fs.FS) *FSFetcher {
	return &FSFetcher{fsys: fsys}
}

func (f *FSFetcher) Fetch(ctx context.Context, location string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &domain.FetchError{Location: location, Err: err}
	}
	name := path.Clean(strings.TrimPrefix(location, "/"))
	data, err := fs.ReadFile(f.fsys, name)
	if err != nil {
		return "", &domain.FetchError{Location: location, Err: err}
	}
	return string(data), nil
}
