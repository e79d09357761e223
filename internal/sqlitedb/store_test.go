package sqlitedb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/founder-scout/internal/dedupe"
	"github.com/jonathan/founder-scout/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "scout.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// withClock pins the store clock; advance moves it forward.
func withClock(s *Store, start time.Time) (advance func(time.Duration)) {
	now := start
	s.now = func() time.Time { return now }
	return func(d time.Duration) { now = now.Add(d) }
}

func addOrg(t *testing.T, s *Store, org types.OrganizationRecord) *types.OrganizationRecord {
	t.Helper()
	created, isNew, err := s.FindOrCreateOrganization(context.Background(), org)
	require.NoError(t, err)
	require.True(t, isNew, "organization %q already existed", org.Name)
	return created
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scout.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	org := addOrg(t, s, types.OrganizationRecord{Name: "Acme", CanonicalURL: "https://acme.test/"})
	require.NoError(t, s.Close())

	s, err = Open(context.Background(), path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	got, err := s.GetOrganization(context.Background(), org.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme", got.Name)
}

func TestFindOrCreateOrganization(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	acme := addOrg(t, s, types.OrganizationRecord{Name: "  Acme ", Batch: "W24", CanonicalURL: "https://WWW.ycombinator.com/companies/acme/"})
	assert.Equal(t, "Acme", acme.Name)
	assert.Equal(t, "https://www.ycombinator.com/companies/acme", acme.CanonicalURL)

	again, isNew, err := s.FindOrCreateOrganization(ctx, types.OrganizationRecord{Name: "Acme Corp", CanonicalURL: "https://www.ycombinator.com/companies/acme"})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, acme.ID, again.ID)
	assert.Equal(t, "W24", again.Batch)

	byName, isNew, err := s.FindOrCreateOrganization(ctx, types.OrganizationRecord{Name: "Beta"})
	require.NoError(t, err)
	assert.True(t, isNew)
	sameName, isNew, err := s.FindOrCreateOrganization(ctx, types.OrganizationRecord{Name: "Beta"})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, byName.ID, sameName.ID)

	_, _, err = s.FindOrCreateOrganization(ctx, types.OrganizationRecord{Name: "   "})
	assert.Error(t, err)
}

func TestUpsertFounder_InsertThenFillOnly(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	org := addOrg(t, s, types.OrganizationRecord{Name: "Acme", CanonicalURL: "https://acme.test/"})

	first, err := s.UpsertFounder(ctx, types.FounderRecord{
		OrganizationID: org.ID, OrganizationName: "Acme", Name: "Jane  Doe", Role: "Founder, CEO",
	})
	require.NoError(t, err)
	assert.Equal(t, types.UpsertInserted, first.Action)

	stored, err := s.ListFounders(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	createdAt := stored[0].CreatedAt

	// A new link fills the empty column; the weaker role does not replace the stored one.
	second, err := s.UpsertFounder(ctx, types.FounderRecord{
		OrganizationID: org.ID, Name: "JANE DOE", Role: "Founder", LinkedInURL: "https://www.linkedin.com/in/janedoe",
	})
	require.NoError(t, err)
	assert.Equal(t, types.UpsertUpdated, second.Action)
	assert.Equal(t, first.FounderID, second.FounderID)
	assert.Equal(t, []types.FounderField{types.FieldLinkedInURL}, second.Changed)

	// An empty draft never clears anything.
	third, err := s.UpsertFounder(ctx, types.FounderRecord{OrganizationID: org.ID, Name: "Jane Doe"})
	require.NoError(t, err)
	assert.Equal(t, types.UpsertUnchanged, third.Action)
	assert.Empty(t, third.Changed)

	stored, err = s.ListFounders(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	want := types.FounderRecord{
		ID:               first.FounderID,
		OrganizationID:   org.ID,
		OrganizationName: "Acme",
		Name:             "Jane Doe",
		Role:             "Founder, CEO",
		LinkedInURL:      "https://www.linkedin.com/in/janedoe",
		CreatedAt:        createdAt,
	}
	if diff := cmp.Diff(want, stored[0]); diff != "" {
		t.Errorf("stored founder mismatch (-want +got):\n%s", diff)
	}
}

func TestUpsertFounder_Rejects(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertFounder(ctx, types.FounderRecord{OrganizationID: uuid.New(), Name: "  "})
	assert.Error(t, err)
	_, err = s.UpsertFounder(ctx, types.FounderRecord{Name: "Jane Doe"})
	assert.Error(t, err)
	// Unknown organization violates the foreign key.
	_, err = s.UpsertFounder(ctx, types.FounderRecord{OrganizationID: uuid.New(), Name: "Jane Doe"})
	assert.Error(t, err)
}

func TestUpsertFounder_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	org := addOrg(t, s, types.OrganizationRecord{Name: "Acme", CanonicalURL: "https://acme.test/"})

	drafts := []types.FounderRecord{
		{OrganizationID: org.ID, Name: "Jane Doe", Role: "Founder, CEO"},
		{OrganizationID: org.ID, Name: "John Smith", Role: "Founder, CTO"},
	}
	for range 2 {
		for _, d := range drafts {
			_, err := s.UpsertFounder(ctx, d)
			require.NoError(t, err)
		}
	}

	names, err := s.ListFounderNames(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane Doe", "John Smith"}, names)
}

func TestFindOrganizationsPendingExtraction(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	advance := withClock(s, time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))

	fresh := addOrg(t, s, types.OrganizationRecord{Name: "Fresh", CanonicalURL: "https://fresh.test/"})
	advance(time.Second)
	done := addOrg(t, s, types.OrganizationRecord{Name: "Done", CanonicalURL: "https://done.test/"})
	advance(time.Second)
	empty := addOrg(t, s, types.OrganizationRecord{Name: "Empty", CanonicalURL: "https://empty.test/"})
	addOrg(t, s, types.OrganizationRecord{Name: "Listing", CanonicalURL: "https://dir.test/companies?batch=W24"})
	addOrg(t, s, types.OrganizationRecord{Name: "No URL"})

	_, err := s.UpsertFounder(ctx, types.FounderRecord{OrganizationID: done.ID, Name: "Jane Doe"})
	require.NoError(t, err)
	require.NoError(t, s.MarkOrganizationExtracted(ctx, done.ID, s.now()))
	require.NoError(t, s.MarkOrganizationExtracted(ctx, empty.ID, s.now()))

	ids := func(orgs []types.OrganizationRecord) []uuid.UUID {
		out := make([]uuid.UUID, len(orgs))
		for i, o := range orgs {
			out[i] = o.ID
		}
		return out
	}

	pending, err := s.FindOrganizationsPendingExtraction(ctx, types.PendingFilter{StaleAfter: 24 * time.Hour})
	require.NoError(t, err)
	// Never-extracted first, then extracted-but-empty.
	assert.Equal(t, []uuid.UUID{fresh.ID, empty.ID}, ids(pending))

	limited, err := s.FindOrganizationsPendingExtraction(ctx, types.PendingFilter{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{fresh.ID}, ids(limited))

	advance(48 * time.Hour)
	stale, err := s.FindOrganizationsPendingExtraction(ctx, types.PendingFilter{StaleAfter: 24 * time.Hour})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{fresh.ID, done.ID, empty.ID}, ids(stale))

	noStale, err := s.FindOrganizationsPendingExtraction(ctx, types.PendingFilter{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{fresh.ID, empty.ID}, ids(noStale))

	assert.Error(t, s.MarkOrganizationExtracted(ctx, uuid.New(), s.now()))
}

func TestMergeOrganizations(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	keep := addOrg(t, s, types.OrganizationRecord{Name: "Acme", Batch: "W24", CanonicalURL: "https://acme.test/a"})
	dup := addOrg(t, s, types.OrganizationRecord{Name: "Acme\nBuilds rockets", CanonicalURL: "https://acme.test/b"})

	_, err := s.UpsertFounder(ctx, types.FounderRecord{OrganizationID: keep.ID, OrganizationName: "Acme", Name: "Jane Doe", Role: "Founder"})
	require.NoError(t, err)
	_, err = s.UpsertFounder(ctx, types.FounderRecord{OrganizationID: dup.ID, OrganizationName: "Acme", Name: "jane doe", Role: "CEO", Bio: "Rocket person."})
	require.NoError(t, err)
	_, err = s.UpsertFounder(ctx, types.FounderRecord{OrganizationID: dup.ID, OrganizationName: "Acme", Name: "John Smith"})
	require.NoError(t, err)

	require.NoError(t, s.MergeOrganizations(ctx, keep.ID, []uuid.UUID{dup.ID, keep.ID}))

	gone, err := s.GetOrganization(ctx, dup.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	founders, err := s.ListFounders(ctx, keep.ID)
	require.NoError(t, err)
	got := make(map[string]types.FounderRecord)
	for _, f := range founders {
		got[f.Name] = f
	}
	require.Len(t, got, 2)
	assert.Equal(t, "Founder", got["Jane Doe"].Role, "kept row's role is not overwritten")
	assert.Equal(t, "Rocket person.", got["Jane Doe"].Bio, "empty field is filled from the discarded row")
	assert.Equal(t, keep.ID, got["John Smith"].OrganizationID)

	moved, err := s.ListFounders(ctx, dup.ID)
	require.NoError(t, err)
	assert.Empty(t, moved)

	assert.Error(t, s.MergeOrganizations(ctx, uuid.New(), []uuid.UUID{keep.ID}))
	assert.NoError(t, s.MergeOrganizations(ctx, keep.ID, nil))
}

// Two organizations sharing a canonical URL collapse to the one with a batch,
// and the discarded organization's founders follow it.
func TestDedupeRun_CanonicalURLDuplicates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	advance := withClock(s, time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))

	withBatch := addOrg(t, s, types.OrganizationRecord{Name: "Acme", Batch: "S23", CanonicalURL: "https://acme.test/"})
	advance(time.Minute)
	// FindOrCreate would return the first row, so insert the duplicate directly.
	dupID := uuid.New()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO organizations (id, name, canonical_url, created_at) VALUES (?, ?, ?, ?)`,
		dupID, "Acme", "https://acme.test", toNanos(s.now()))
	require.NoError(t, err)
	_, err = s.UpsertFounder(ctx, types.FounderRecord{OrganizationID: dupID, Name: "Jane Doe"})
	require.NoError(t, err)

	report, err := dedupe.Run(ctx, s, nil, dedupe.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Removed)

	orgs, err := s.ListOrganizations(ctx)
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, withBatch.ID, orgs[0].ID)

	founders, err := s.ListFounders(ctx, withBatch.ID)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"Jane Doe"}, namesOf(founders), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("founders mismatch (-want +got):\n%s", diff)
	}
}

func namesOf(founders []types.FounderRecord) []string {
	var out []string
	for _, f := range founders {
		out = append(out, f.Name)
	}
	return out
}

func TestPageCache(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	advance := withClock(s, time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))
	const pageURL = "https://acme.test/"

	page, err := s.GetFreshPage(ctx, pageURL, time.Hour)
	require.NoError(t, err)
	assert.Nil(t, page)

	require.NoError(t, s.SavePage(ctx, &types.CachedPage{URL: pageURL, HTML: "<p>hi</p>", StatusCode: 200, FetchedAt: s.now()}))
	page, err = s.GetFreshPage(ctx, pageURL, time.Hour)
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.Equal(t, "<p>hi</p>", page.HTML)
	assert.Equal(t, 200, page.StatusCode)

	advance(2 * time.Hour)
	page, err = s.GetFreshPage(ctx, pageURL, time.Hour)
	require.NoError(t, err)
	assert.Nil(t, page, "stale page is not served")
}

func TestRecordFailedFetch_BackoffSchedule(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	advance := withClock(s, time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))
	const pageURL = "https://flaky.test/"

	for _, wait := range []time.Duration{time.Minute, 5 * time.Minute, 25 * time.Minute, 2 * time.Hour, 2 * time.Hour} {
		require.NoError(t, s.RecordFailedFetch(ctx, pageURL, 503, "HTTP 503"))

		skip, reason, err := s.ShouldSkipURL(ctx, pageURL)
		require.NoError(t, err)
		assert.True(t, skip)
		assert.Equal(t, "retry backoff", reason)

		advance(wait - time.Second)
		skip, _, err = s.ShouldSkipURL(ctx, pageURL)
		require.NoError(t, err)
		assert.True(t, skip, "still in backoff just before %s", wait)

		advance(time.Second)
		skip, _, err = s.ShouldSkipURL(ctx, pageURL)
		require.NoError(t, err)
		assert.False(t, skip, "retry allowed after %s", wait)
	}

	// Success clears the failure state.
	require.NoError(t, s.SavePage(ctx, &types.CachedPage{URL: pageURL, HTML: "ok", StatusCode: 200}))
	require.NoError(t, s.RecordFailedFetch(ctx, pageURL, 503, "HTTP 503"))
	advance(time.Minute)
	skip, _, err := s.ShouldSkipURL(ctx, pageURL)
	require.NoError(t, err)
	assert.False(t, skip, "backoff restarts at one minute after a success")
}

func TestRecordFailedFetch_Permanent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	advance := withClock(s, time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))

	require.NoError(t, s.RecordFailedFetch(ctx, "https://gone.test/", 404, "fetch error for https://gone.test/: HTTP 404"))
	advance(30 * 24 * time.Hour)

	skip, reason, err := s.ShouldSkipURL(ctx, "https://gone.test/")
	require.NoError(t, err)
	assert.True(t, skip)
	assert.Equal(t, "fetch error for https://gone.test/: HTTP 404", reason)

	// A later transient failure does not clear the permanent flag.
	require.NoError(t, s.RecordFailedFetch(ctx, "https://gone.test/", 503, "HTTP 503"))
	skip, _, err = s.ShouldSkipURL(ctx, "https://gone.test/")
	require.NoError(t, err)
	assert.True(t, skip)
}
