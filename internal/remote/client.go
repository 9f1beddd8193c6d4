// Package remote fetches bibliographic records from the supported
// repositories. Each repository descriptor turns a raw HTTP response into
// record fields plus the related-identifier pairs discovered inside it.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/mathbib/mbib/internal/keyid"
	"github.com/mathbib/mbib/internal/record"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit caps requests per second across all repositories; both the
	// arXiv export API and zbMATH Open ask for polite clients.
	RateLimit = 5.0

	// UserAgent identifies this tool to the repositories.
	UserAgent = "mbib (https://github.com/mathbib/mbib)"
)

// Client is a rate-limited HTTP client for repository record lookups.
// It implements record.Fetcher.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	baseURLs   map[keyid.Repo]string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL overrides the base URL for one repository (for testing).
func WithBaseURL(repo keyid.Repo, url string) ClientOption {
	return func(c *Client) {
		c.baseURLs[repo] = url
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a repository client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		userAgent:  UserAgent,
		baseURLs:   make(map[keyid.Repo]string),
	}
	for _, repo := range keyid.Repos() {
		c.baseURLs[repo] = repositories[repo].baseURL
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches one identifier's record. A missing record returns nil fields
// with a nil error; a connectivity failure returns ErrNetwork.
func (c *Client) Load(ctx context.Context, key keyid.KeyID) (record.Fields, []record.RelatedPair, error) {
	repo, ok := repositories[key.Repo]
	if !ok {
		return nil, nil, nil
	}

	body, status, err := c.get(ctx, c.baseURLs[key.Repo]+repo.recordPath(key.ID), repo.accept)
	if err != nil {
		return nil, nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil, nil
	}
	if status >= 400 {
		return nil, nil, &APIError{Repo: key.Repo.String(), StatusCode: status}
	}

	fields, related, err := repo.parse(key.ID, body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w from %s: %v", ErrInvalidResponse, key.Repo, err)
	}
	return fields, related, nil
}

// ShowURL returns a browser URL for the record, or "" if the repository has
// no public landing page.
func ShowURL(key keyid.KeyID) string {
	repo, ok := repositories[key.Repo]
	if !ok || repo.showURL == nil {
		return ""
	}
	return repo.showURL(key.ID)
}

// Download streams the repository's file for key to dest. Returns
// ErrNoDownload if the repository offers no file downloads.
func (c *Client) Download(ctx context.Context, key keyid.KeyID, dest string) error {
	repo, ok := repositories[key.Repo]
	if !ok || repo.downloadURL == nil {
		return fmt.Errorf("%w for %s", ErrNoDownload, key)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, repo.downloadURL(key.ID), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &APIError{Repo: key.Repo.String(), StatusCode: resp.StatusCode}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating download directory: %w", err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(dest)
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

// get performs a rate-limited GET and returns the body and status code.
// Non-2xx statuses are returned to the caller, not converted to errors here,
// because a 404 is a valid "record absent" answer.
func (c *Client) get(ctx context.Context, url, accept string) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: reading body: %v", ErrNetwork, err)
	}
	return body, resp.StatusCode, nil
}
