package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sitequery/sitequery/internal/config"
)

// Fetcher performs single-attempt, timeout-bounded HTTP GETs and gates
// responses on content type. It is the only component in the crawler
// that touches the network.
//
// Design decision: one attempt per call, no retry or backoff. A failed
// fetch simply removes that URL (and its undiscovered children) from the
// crawl; the crawl engine treats partial coverage as the normal outcome.
type Fetcher struct {
	// client performs the requests. Its Timeout bounds each fetch.
	client *http.Client

	// userAgent is the User-Agent header sent with every request.
	userAgent string

	// headers are extra headers added to every request, e.g. per-host
	// credentials from the config file.
	headers map[string]string

	// maxBodySize limits how much of a response body is read.
	maxBodySize int64

	// logger records why individual fetches were rejected.
	logger *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithHeaders sets extra headers added to every request.
func WithHeaders(headers map[string]string) FetcherOption {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithFetcherLogger sets a custom logger.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher using the given HTTP client.
//
// Design decision: the client is injected rather than constructed here
// so the caller controls the timeout and tests can use httptest clients.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      client,
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch performs a single GET against pageURL and returns the raw markup.
// It returns an error when the status is not 200, when the response is
// not HTML (and the URL does not end in ".html"), or on any transport
// failure. Callers treat every error from Fetch as "skip this URL".
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid request for %s: %w", pageURL, err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	f.logger.Debug("GET", "url", pageURL)

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Debug("transport error", "url", pageURL, "error", err)
		return "", fmt.Errorf("request failed for %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Debug("non-200 status", "url", pageURL, "status", resp.StatusCode)
		return "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode, pageURL)
	}

	if !acceptableContentType(resp.Header.Get("Content-Type"), pageURL) {
		f.logger.Debug("skipping non-HTML content type",
			"url", pageURL,
			"contentType", resp.Header.Get("Content-Type"),
		)
		return "", fmt.Errorf("unsupported content type %q for %s", resp.Header.Get("Content-Type"), pageURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read body for %s: %w", pageURL, err)
	}

	return string(body), nil
}

// acceptableContentType reports whether a response should be parsed as
// HTML. A URL literally ending in ".html" is accepted regardless of the
// declared content type, since static hosts occasionally mislabel pages.
func acceptableContentType(contentType, pageURL string) bool {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml") {
		return true
	}
	return strings.HasSuffix(pageURL, ".html")
}
