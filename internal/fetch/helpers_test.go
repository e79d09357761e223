package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/jonathan/founder-scout/internal/types"
)

// scriptedFetcher returns queued results in order, repeating the last one.
type scriptedFetcher struct {
	mu      sync.Mutex
	results []scriptedResult
	calls   int
}

type scriptedResult struct {
	snap *types.PageSnapshot
	err  error
}

func (s *scriptedFetcher) Fetch(_ context.Context, _ string) (*types.PageSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := min(s.calls, len(s.results)-1)
	s.calls++
	return s.results[i].snap, s.results[i].err
}

func (s *scriptedFetcher) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func htmlSnap(t interface{ Helper() }, pageURL, html string) *types.PageSnapshot {
	t.Helper()
	snap, err := BuildSnapshot(pageURL, html, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	if err != nil {
		panic(err)
	}
	return snap
}

// memoryCache is an in-memory PageCache following the store's skip rules.
type memoryCache struct {
	pages    map[string]*types.CachedPage
	failures map[string]int
	skip     map[string]string
	saved    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		pages:    map[string]*types.CachedPage{},
		failures: map[string]int{},
		skip:     map[string]string{},
	}
}

func (m *memoryCache) GetFreshPage(_ context.Context, pageURL string, maxAge time.Duration) (*types.CachedPage, error) {
	p, ok := m.pages[pageURL]
	if !ok || time.Since(p.FetchedAt) >= maxAge {
		return nil, nil
	}
	return p, nil
}

func (m *memoryCache) SavePage(_ context.Context, page *types.CachedPage) error {
	m.saved++
	m.pages[page.URL] = page
	delete(m.failures, page.URL)
	return nil
}

func (m *memoryCache) RecordFailedFetch(_ context.Context, pageURL string, statusCode int, message string) error {
	m.failures[pageURL]++
	if types.IsPermanentHTTPStatus(statusCode) {
		m.skip[pageURL] = message
	} else {
		m.skip[pageURL] = "retry backoff"
	}
	return nil
}

func (m *memoryCache) ShouldSkipURL(_ context.Context, pageURL string) (bool, string, error) {
	reason, ok := m.skip[pageURL]
	return ok, reason, nil
}
