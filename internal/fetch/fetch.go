// Package fetch turns organization URLs into page snapshots.
// It covers plain HTTP, headless browser rendering, retries and the page cache.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jonathan/founder-scout/internal/types"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; FounderScout/1.0)"

// maxRedirects bounds redirect chains on plain HTTP fetches.
const maxRedirects = 10

// Fetcher produces a snapshot of the page at a URL.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*types.PageSnapshot, error)
}

// Error represents an error during URL fetching.
type Error struct {
	URL        string
	StatusCode int
	Message    string
	Cause      error
	// Retryable marks failures that may succeed on a later attempt.
	Retryable bool
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether err is a fetch failure worth retrying.
func IsRetryable(err error) bool {
	var fetchErr *Error
	if errors.As(err, &fetchErr) {
		return fetchErr.Retryable
	}
	return false
}

// StatusCode returns the HTTP status carried by a fetch error, or 0.
func StatusCode(err error) int {
	var fetchErr *Error
	if errors.As(err, &fetchErr) {
		return fetchErr.StatusCode
	}
	return 0
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		Headers: map[string]string{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
		},
	}
}

// HTTPFetcher fetches pages with a plain HTTP GET.
type HTTPFetcher struct {
	client *resty.Client
}

// NewHTTPFetcher creates an HTTP fetcher. Nil options use DefaultOptions.
func NewHTTPFetcher(opts *Options) *HTTPFetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	client := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects)).
		SetHeader("User-Agent", userAgent)
	if len(opts.Headers) > 0 {
		client.SetHeaders(opts.Headers)
	}
	return &HTTPFetcher{client: client}
}

// FetchHTML retrieves the raw HTML at pageURL and its final status code.
func (f *HTTPFetcher) FetchHTML(ctx context.Context, pageURL string) (string, int, error) {
	if err := validateURL(pageURL); err != nil {
		return "", 0, err
	}

	resp, err := f.client.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return "", 0, &Error{
			URL:       pageURL,
			Message:   "request failed",
			Cause:     err,
			Retryable: isTransient(err),
		}
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return "", status, &Error{
			URL:        pageURL,
			StatusCode: status,
			Message:    fmt.Sprintf("HTTP %d", status),
			Retryable:  retryableStatus(status),
		}
	}
	return string(resp.Body()), status, nil
}

// Fetch retrieves pageURL and builds a snapshot from the response.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*types.PageSnapshot, error) {
	html, _, err := f.FetchHTML(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return BuildSnapshot(pageURL, html, time.Now().UTC())
}

func validateURL(pageURL string) error {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return &Error{URL: pageURL, Message: "invalid URL", Cause: err}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return &Error{URL: pageURL, Message: "invalid URL: scheme must be http or https"}
	}
	if parsed.Host == "" {
		return &Error{URL: pageURL, Message: "invalid URL: missing host"}
	}
	return nil
}

func retryableStatus(status int) bool {
	switch {
	case status == 408, status == 425, status == 429:
		return true
	case status >= 500:
		return true
	default:
		return false
	}
}

// isTransient treats transport failures as retryable unless the caller gave up.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	// Redirect loops and malformed responses will not improve on retry.
	msg := err.Error()
	return !strings.Contains(msg, "redirect") && !strings.Contains(msg, "malformed")
}
