package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/founder-scout/internal/fetch"
	"github.com/jonathan/founder-scout/internal/reconcile"
	"github.com/jonathan/founder-scout/internal/types"
)

// pageFetcher serves fixed HTML per URL; unknown URLs fail with a 404.
type pageFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	fetched []string
}

func (f *pageFetcher) Fetch(_ context.Context, pageURL string) (*types.PageSnapshot, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, pageURL)
	html, ok := f.pages[pageURL]
	f.mu.Unlock()
	if !ok {
		return nil, &fetch.Error{URL: pageURL, StatusCode: 404, Message: "HTTP 404"}
	}
	return fetch.BuildSnapshot(pageURL, html, time.Now())
}

// memoryStore keeps founders per organization with fill-only updates.
type memoryStore struct {
	mu        sync.Mutex
	orgs      []types.OrganizationRecord
	founders  map[uuid.UUID][]types.FounderRecord
	extracted map[uuid.UUID]time.Time
	failOn    string
	listErr   error
}

func newMemoryStore(orgs ...types.OrganizationRecord) *memoryStore {
	return &memoryStore{
		orgs:      orgs,
		founders:  map[uuid.UUID][]types.FounderRecord{},
		extracted: map[uuid.UUID]time.Time{},
	}
}

func (s *memoryStore) FindOrganizationsPendingExtraction(_ context.Context, filter types.PendingFilter) ([]types.OrganizationRecord, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := append([]types.OrganizationRecord(nil), s.orgs...)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *memoryStore) UpsertFounder(_ context.Context, rec types.FounderRecord) (types.UpsertOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != "" && rec.Name == s.failOn {
		return types.UpsertOutcome{}, errors.New("connection reset")
	}
	list := s.founders[rec.OrganizationID]
	for i, existing := range list {
		if existing.NameKey() == rec.NameKey() {
			merged, changed := reconcile.FillOnly(existing, rec)
			list[i] = merged
			if len(changed) == 0 {
				return types.UpsertOutcome{FounderID: existing.ID, Action: types.UpsertUnchanged}, nil
			}
			return types.UpsertOutcome{FounderID: existing.ID, Action: types.UpsertUpdated, Changed: changed}, nil
		}
	}
	rec.ID = uuid.New()
	s.founders[rec.OrganizationID] = append(list, rec)
	return types.UpsertOutcome{FounderID: rec.ID, Action: types.UpsertInserted}, nil
}

func (s *memoryStore) ListFounderNames(_ context.Context, orgID uuid.UUID) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return reconcile.Names(s.founders[orgID]), nil
}

func (s *memoryStore) MarkOrganizationExtracted(_ context.Context, orgID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extracted[orgID] = at
	return nil
}

func (s *memoryStore) foundersOf(orgID uuid.UUID) []types.FounderRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.FounderRecord(nil), s.founders[orgID]...)
}

func (s *memoryStore) wasExtracted(orgID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.extracted[orgID]
	return ok
}
