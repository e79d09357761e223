package types

import "time"

// Fetch statuses stored with cached pages.
const (
	FetchStatusSuccess  = "success"
	FetchStatusNotFound = "not_found"
	FetchStatusBlocked  = "blocked"
	FetchStatusError    = "error"
)

// CachedPage is a fetched page kept in the store's page cache.
type CachedPage struct {
	URL        string
	HTML       string
	StatusCode int
	FetchedAt  time.Time
}

// FetchStatusFromHTTP maps an HTTP status to a stored fetch status.
func FetchStatusFromHTTP(status int) string {
	switch {
	case status >= 200 && status < 300:
		return FetchStatusSuccess
	case status == 404 || status == 410:
		return FetchStatusNotFound
	case status == 403 || status == 429:
		return FetchStatusBlocked
	default:
		return FetchStatusError
	}
}

// IsPermanentHTTPStatus reports statuses that will not change on retry.
func IsPermanentHTTPStatus(status int) bool {
	switch status {
	case 404, 410, 451:
		return true
	default:
		return false
	}
}

// FailureBackoff is how long to wait after the n-th consecutive failed fetch:
// 1m, 5m, 25m, then 2h.
func FailureBackoff(failures int) time.Duration {
	if failures < 1 {
		failures = 1
	}
	d := time.Minute
	for i := 1; i < failures && i <= 3; i++ {
		d *= 5
	}
	return min(d, 2*time.Hour)
}
