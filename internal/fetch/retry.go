package fetch

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	applogger "github.com/jonathan/founder-scout/internal/logger"
	"github.com/jonathan/founder-scout/internal/types"
)

// DefaultRetryInterval is the first wait before retrying a transient failure.
const DefaultRetryInterval = time.Second

// RetryingFetcher retries transient fetch failures with exponential backoff.
// Failures not marked retryable are returned immediately.
type RetryingFetcher struct {
	next       Fetcher
	maxRetries int
	interval   time.Duration
	logger     *zap.Logger
}

// NewRetryingFetcher wraps next with up to maxRetries additional attempts.
func NewRetryingFetcher(next Fetcher, maxRetries int, logger *zap.Logger) *RetryingFetcher {
	logger = applogger.OrNop(logger)
	return &RetryingFetcher{
		next:       next,
		maxRetries: max(maxRetries, 0),
		interval:   DefaultRetryInterval,
		logger:     logger,
	}
}

// WithInterval sets the initial backoff interval.
func (r *RetryingFetcher) WithInterval(d time.Duration) *RetryingFetcher {
	if d > 0 {
		r.interval = d
	}
	return r
}

// Fetch calls the wrapped fetcher until it succeeds, fails permanently or runs out of retries.
func (r *RetryingFetcher) Fetch(ctx context.Context, pageURL string) (*types.PageSnapshot, error) {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = r.interval
	expo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(r.maxRetries)), ctx)

	var snap *types.PageSnapshot
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		s, err := r.next.Fetch(ctx, pageURL)
		if err != nil {
			if !IsRetryable(err) {
				return backoff.Permanent(err)
			}
			r.logger.Debug("transient fetch failure",
				zap.String("url", pageURL),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}
		snap = s
		return nil
	}, policy)
	if err != nil {
		return nil, err
	}
	return snap, nil
}
