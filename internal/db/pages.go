package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/founder-scout/internal/types"
)

// HashContent computes SHA-256 hash of content for change detection
func HashContent(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// GetFreshPage retrieves a page only if it's not stale and was successful
func (db *DB) GetFreshPage(ctx context.Context, pageURL string, maxAge time.Duration) (*types.CachedPage, error) {
	var (
		id     uuid.UUID
		page   types.CachedPage
		html   *string
		status *int
		fetch  string
	)
	err := db.pool.QueryRow(ctx,
		`SELECT id, url, raw_html, http_status, fetch_status, fetched_at
		 FROM crawled_pages WHERE url = $1`, pageURL,
	).Scan(&id, &page.URL, &html, &status, &fetch, &page.FetchedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get crawled page: %w", err)
	}
	if fetch != types.FetchStatusSuccess || html == nil || time.Since(page.FetchedAt) >= maxAge {
		return nil, nil
	}
	page.HTML = *html
	if status != nil {
		page.StatusCode = *status
	}

	_, _ = db.pool.Exec(ctx, `UPDATE crawled_pages SET last_accessed_at = NOW() WHERE id = $1`, id)
	return &page, nil
}

// SavePage inserts or updates a successfully fetched page and clears any failure state.
func (db *DB) SavePage(ctx context.Context, page *types.CachedPage) error {
	fetchedAt := page.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO crawled_pages (id, url, raw_html, content_hash, http_status, fetch_status, fetched_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (url) DO UPDATE SET
		     raw_html = $3,
		     content_hash = $4,
		     http_status = $5,
		     fetch_status = $6,
		     error_message = NULL,
		     is_permanent_failure = FALSE,
		     retry_count = 0,
		     retry_after = NULL,
		     fetched_at = $7,
		     updated_at = NOW()`,
		uuid.New(), page.URL, page.HTML, HashContent(page.HTML), page.StatusCode,
		types.FetchStatusSuccess, fetchedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save crawled page: %w", err)
	}
	return nil
}

// RecordFailedFetch records a failed fetch attempt with exponential backoff.
// Schedule: 1 min, 5 min, 25 min, then 2 hours. Permanent failures are never retried.
func (db *DB) RecordFailedFetch(ctx context.Context, pageURL string, httpStatus int, errorMsg string) error {
	fetchStatus := types.FetchStatusFromHTTP(httpStatus)
	isPermanent := types.IsPermanentHTTPStatus(httpStatus)

	_, err := db.pool.Exec(ctx,
		`INSERT INTO crawled_pages (id, url, http_status, fetch_status, error_message, is_permanent_failure, retry_count, retry_after, fetched_at)
		 VALUES ($1, $2, $3, $4, $5, $6, 1,
		         CASE WHEN $6 THEN NULL ELSE NOW() + INTERVAL '1 minute' END,
		         NOW())
		 ON CONFLICT (url) DO UPDATE SET
		     http_status = $3,
		     fetch_status = $4,
		     error_message = $5,
		     is_permanent_failure = $6 OR crawled_pages.is_permanent_failure,
		     retry_count = crawled_pages.retry_count + 1,
		     retry_after = CASE
		         WHEN $6 OR crawled_pages.is_permanent_failure THEN NULL
		         ELSE NOW() + LEAST(
		             INTERVAL '1 minute' * POWER(5, LEAST(crawled_pages.retry_count, 3)),
		             INTERVAL '2 hours'
		         )
		     END,
		     fetched_at = NOW(),
		     updated_at = NOW()`,
		uuid.New(), pageURL, httpStatus, fetchStatus, errorMsg, isPermanent,
	)
	if err != nil {
		return fmt.Errorf("failed to record failed fetch: %w", err)
	}
	return nil
}

// ShouldSkipURL checks if a URL should be skipped due to previous permanent failure
func (db *DB) ShouldSkipURL(ctx context.Context, pageURL string) (bool, string, error) {
	var (
		permanent  bool
		errMsg     *string
		retryAfter *time.Time
	)
	err := db.pool.QueryRow(ctx,
		`SELECT is_permanent_failure, error_message, retry_after FROM crawled_pages WHERE url = $1`,
		pageURL,
	).Scan(&permanent, &errMsg, &retryAfter)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
	if retryAfter != nil && time.Now().Before(*retryAfter) {
		return true, "retry backoff", nil
	}
	return false, "", nil
}
