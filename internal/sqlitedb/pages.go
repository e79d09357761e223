package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/founder-scout/internal/types"
)

// GetFreshPage returns a successful page fetched within maxAge, or nil.
func (s *Store) GetFreshPage(ctx context.Context, pageURL string, maxAge time.Duration) (*types.CachedPage, error) {
	var (
		html      *string
		status    *int
		fetch     string
		fetchedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT raw_html, http_status, fetch_status, fetched_at FROM crawled_pages WHERE url = ?`, pageURL,
	).Scan(&html, &status, &fetch, &fetchedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get crawled page: %w", err)
	}
	at := fromNanos(fetchedAt)
	if fetch != types.FetchStatusSuccess || html == nil || s.now().Sub(at) >= maxAge {
		return nil, nil
	}
	page := &types.CachedPage{URL: pageURL, HTML: *html, FetchedAt: at}
	if status != nil {
		page.StatusCode = *status
	}
	return page, nil
}

// SavePage inserts or updates a successfully fetched page and clears any failure state.
func (s *Store) SavePage(ctx context.Context, page *types.CachedPage) error {
	fetchedAt := page.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO crawled_pages (url, raw_html, http_status, fetch_status, fetched_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (url) DO UPDATE SET
		     raw_html = excluded.raw_html,
		     http_status = excluded.http_status,
		     fetch_status = excluded.fetch_status,
		     error_message = NULL,
		     is_permanent_failure = 0,
		     retry_count = 0,
		     retry_after = NULL,
		     fetched_at = excluded.fetched_at`,
		page.URL, page.HTML, page.StatusCode, types.FetchStatusSuccess, toNanos(fetchedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save crawled page: %w", err)
	}
	return nil
}

// RecordFailedFetch records a failed fetch and schedules the next attempt
// using types.FailureBackoff. Permanent failures are never retried.
func (s *Store) RecordFailedFetch(ctx context.Context, pageURL string, httpStatus int, errorMsg string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		retryCount int
		permanent  bool
	)
	err = tx.QueryRowContext(ctx,
		`SELECT retry_count, is_permanent_failure FROM crawled_pages WHERE url = ?`, pageURL,
	).Scan(&retryCount, &permanent)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to load crawled page: %w", err)
	}

	now := s.now()
	retryCount++
	permanent = permanent || types.IsPermanentHTTPStatus(httpStatus)
	var retryAfter *int64
	if !permanent {
		at := toNanos(now.Add(types.FailureBackoff(retryCount)))
		retryAfter = &at
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO crawled_pages (url, http_status, fetch_status, error_message, is_permanent_failure, retry_count, retry_after, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (url) DO UPDATE SET
		     http_status = excluded.http_status,
		     fetch_status = excluded.fetch_status,
		     error_message = excluded.error_message,
		     is_permanent_failure = excluded.is_permanent_failure,
		     retry_count = excluded.retry_count,
		     retry_after = excluded.retry_after,
		     fetched_at = excluded.fetched_at`,
		pageURL, httpStatus, types.FetchStatusFromHTTP(httpStatus), errorMsg, permanent,
		retryCount, retryAfter, toNanos(now),
	)
	if err != nil {
		return fmt.Errorf("failed to record failed fetch: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit failed fetch: %w", err)
	}
	return nil
}

// ShouldSkipURL reports permanent failures and URLs still in retry backoff.
func (s *Store) ShouldSkipURL(ctx context.Context, pageURL string) (bool, string, error) {
	var (
		permanent  bool
		errMsg     *string
		retryAfter *int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT is_permanent_failure, error_message, retry_after FROM crawled_pages WHERE url = ?`, pageURL,
	).Scan(&permanent, &errMsg, &retryAfter)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, "", nil
		}
		return false, "", fmt.Errorf("failed to check crawled page: %w", err)
	}

	if permanent {
		reason := "permanent failure"
		if errMsg != nil {
			reason = *errMsg
		}
		return true, reason, nil
	}
	if retryAfter != nil && s.now().Before(fromNanos(*retryAfter)) {
		return true, "retry backoff", nil
	}
	return false, "", nil
}
