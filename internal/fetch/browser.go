package fetch

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	applogger "github.com/jonathan/founder-scout/internal/logger"
	"github.com/jonathan/founder-scout/internal/types"
)

// MinContentLength is the minimum extracted text length to consider HTTP fetch successful.
// If content is shorter, we should fall back to browser rendering.
const MinContentLength = 500

// DefaultRenderWait is how long a rendered page is given to run its scripts.
const DefaultRenderWait = 6 * time.Second

// ShouldUseBrowser returns true if the extracted text is too short,
// indicating the page is likely a JavaScript-rendered SPA.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// BrowserOptions configures headless rendering.
type BrowserOptions struct {
	Timeout    time.Duration
	RenderWait time.Duration
	// Scroll scrolls to the bottom and back to trigger lazy-loaded sections.
	Scroll bool
	Logger *zap.Logger
}

// BrowserFetcher renders pages in headless Chrome.
// Requires Chrome/Chromium to be installed on the system.
type BrowserFetcher struct {
	opts   BrowserOptions
	logger *zap.Logger
}

// NewBrowserFetcher creates a browser fetcher.
func NewBrowserFetcher(opts BrowserOptions) *BrowserFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RenderWait < 0 {
		opts.RenderWait = 0
	}
	logger := applogger.OrNop(opts.Logger)
	return &BrowserFetcher{opts: opts, logger: logger}
}

// RenderHTML loads pageURL, waits for client rendering and returns the final DOM as HTML.
func (b *BrowserFetcher) RenderHTML(ctx context.Context, pageURL string) (string, error) {
	if err := validateURL(pageURL); err != nil {
		return "", err
	}
	b.logger.Debug("starting headless browser", zap.String("url", pageURL))

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(DefaultUserAgent),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, b.opts.Timeout)
	defer cancel()

	actions := []chromedp.Action{
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(b.opts.RenderWait),
	}
	if b.opts.Scroll {
		var scrolled bool
		actions = append(actions,
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight); true`, &scrolled),
			chromedp.Sleep(time.Second),
			chromedp.Evaluate(`window.scrollTo(0, 0); true`, &scrolled),
			chromedp.Sleep(500*time.Millisecond),
		)
	}
	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html))

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return "", &Error{
			URL:       pageURL,
			Message:   "browser rendering failed",
			Cause:     err,
			Retryable: ctx.Err() == nil,
		}
	}

	b.logger.Debug("rendered page", zap.String("url", pageURL), zap.Int("bytes", len(html)))
	return html, nil
}

// Fetch renders pageURL and builds a snapshot from the rendered DOM.
func (b *BrowserFetcher) Fetch(ctx context.Context, pageURL string) (*types.PageSnapshot, error) {
	html, err := b.RenderHTML(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return BuildSnapshot(pageURL, html, time.Now().UTC())
}

// AutoFetcher tries plain HTTP first and renders in a browser only when the
// response looks like an unrendered single-page app.
type AutoFetcher struct {
	HTTP    Fetcher
	Browser Fetcher
	Logger  *zap.Logger
}

// Fetch returns the HTTP snapshot when it has enough content or client state,
// otherwise the rendered one. A failed render falls back to the HTTP snapshot.
func (a *AutoFetcher) Fetch(ctx context.Context, pageURL string) (*types.PageSnapshot, error) {
	logger := applogger.OrNop(a.Logger)

	snap, err := a.HTTP.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if a.Browser == nil || snap.StructuredData != nil || !ShouldUseBrowser(snap.VisibleText) {
		return snap, nil
	}

	logger.Debug("page looks client-rendered, using browser",
		zap.String("url", pageURL),
		zap.Int("text_length", len(strings.TrimSpace(snap.VisibleText))))
	rendered, err := a.Browser.Fetch(ctx, pageURL)
	if err != nil {
		logger.Warn("browser rendering failed, using HTTP response",
			zap.String("url", pageURL), zap.Error(err))
		return snap, nil
	}
	return rendered, nil
}
