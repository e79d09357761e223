package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	applogger "github.com/jonathan/founder-scout/internal/logger"
	"github.com/jonathan/founder-scout/internal/types"
)

// DefaultPageCacheTTL is how long a successfully fetched page is reused.
const DefaultPageCacheTTL = 24 * time.Hour

// PageCache stores fetched pages and fetch failures.
type PageCache interface {
	// GetFreshPage returns a successful page fetched within maxAge, or nil.
	GetFreshPage(ctx context.Context, pageURL string, maxAge time.Duration) (*types.CachedPage, error)
	SavePage(ctx context.Context, page *types.CachedPage) error
	// RecordFailedFetch stores a failure and schedules the next allowed attempt.
	RecordFailedFetch(ctx context.Context, pageURL string, statusCode int, message string) error
	// ShouldSkipURL reports permanent failures and URLs still in retry backoff.
	ShouldSkipURL(ctx context.Context, pageURL string) (bool, string, error)
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL  time.Duration
	SkipCache bool // Always fetch, but still record results
	Logger    *zap.Logger
}

// CachedFetcher wraps a fetcher with a page cache.
type CachedFetcher struct {
	next      Fetcher
	cache     PageCache
	cacheTTL  time.Duration
	skipCache bool
	logger    *zap.Logger
}

// NewCachedFetcher creates a new cached fetcher. A nil cache disables caching.
func NewCachedFetcher(next Fetcher, cache PageCache, config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = &CachedFetcherConfig{}
	}
	ttl := config.CacheTTL
	if ttl <= 0 {
		ttl = DefaultPageCacheTTL
	}
	logger := applogger.OrNop(config.Logger)
	return &CachedFetcher{
		next:      next,
		cache:     cache,
		cacheTTL:  ttl,
		skipCache: config.SkipCache,
		logger:    logger,
	}
}

// Fetch retrieves a URL, using the cache if a fresh copy exists.
func (f *CachedFetcher) Fetch(ctx context.Context, pageURL string) (*types.PageSnapshot, error) {
	if f.cache == nil {
		return f.next.Fetch(ctx, pageURL)
	}

	// Permanent failures and URLs in backoff are not fetched again.
	shouldSkip, reason, err := f.cache.ShouldSkipURL(ctx, pageURL)
	if err != nil {
		return nil, &Error{URL: pageURL, Message: "failed to check skip status", Cause: err}
	}
	if shouldSkip {
		return nil, &Error{URL: pageURL, Message: fmt.Sprintf("URL skipped: %s", reason)}
	}

	if !f.skipCache {
		cached, err := f.cache.GetFreshPage(ctx, pageURL, f.cacheTTL)
		if err != nil {
			return nil, &Error{URL: pageURL, Message: "failed to check cache", Cause: err}
		}
		if cached != nil {
			f.logger.Debug("page cache hit", zap.String("url", pageURL), zap.Time("fetched_at", cached.FetchedAt))
			return BuildSnapshot(cached.URL, cached.HTML, cached.FetchedAt)
		}
	}

	snap, err := f.next.Fetch(ctx, pageURL)
	if err != nil {
		if ctx.Err() == nil {
			if recErr := f.cache.RecordFailedFetch(ctx, pageURL, StatusCode(err), err.Error()); recErr != nil {
				f.logger.Warn("failed to record fetch failure", zap.String("url", pageURL), zap.Error(recErr))
			}
		}
		return nil, err
	}

	page := &types.CachedPage{
		URL:        pageURL,
		HTML:       snap.HTML,
		StatusCode: http.StatusOK,
		FetchedAt:  snap.FetchedAt,
	}
	// The fetch succeeded, so a cache write failure is only logged.
	if err := f.cache.SavePage(ctx, page); err != nil {
		f.logger.Warn("failed to cache page", zap.String("url", pageURL), zap.Error(err))
	}
	return snap, nil
}
