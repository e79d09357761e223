package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/founder-scout/internal/config"
	"github.com/jonathan/founder-scout/internal/extraction"
	"github.com/jonathan/founder-scout/internal/fetch"
	"github.com/jonathan/founder-scout/internal/filter"
	"github.com/jonathan/founder-scout/internal/types"
)

const acmePage = `<html><body>
<div>
  <h2>Active Founders</h2>
  <div>Jane Doe</div>
  <div>Founder, CEO</div>
  <div>John Smith</div>
  <div>Founder, CTO</div>
</div>
<h2>Latest News</h2>
<p>Acme launches rockets</p>
</body></html>`

const emptyPage = `<html><body><p>We build rockets for small satellites.</p></body></html>`

const peoplePage = `<html><body>
<section>
  <h2>Active Founders</h2>
  <div><a href="/companies/acme/people/jane-doe">Jane Doe</a></div>
</section>
</body></html>`

func newTestRunner(t *testing.T, store Store, fetcher *pageFetcher, opts Options) *Runner {
	t.Helper()
	cfg := config.DefaultExtractionConfig()
	ex, err := extraction.New(cfg, zap.NewNop())
	require.NoError(t, err)
	return NewRunner(store, fetcher, ex, filter.New(cfg, zap.NewNop()), zap.NewNop(), opts)
}

func testOrg(name, pageURL string) types.OrganizationRecord {
	return types.OrganizationRecord{ID: uuid.New(), Name: name, CanonicalURL: pageURL}
}

func TestRun_InsertsThenLeavesUnchanged(t *testing.T) {
	org := testOrg("Acme\nRockets for everyone", "https://acme.test/companies/acme")
	store := newMemoryStore(org)
	fetcher := &pageFetcher{pages: map[string]string{org.CanonicalURL: acmePage}}
	runner := newTestRunner(t, store, fetcher, Options{Concurrency: 2})

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 2, summary.Inserted)
	assert.True(t, store.wasExtracted(org.ID))

	founders := store.foundersOf(org.ID)
	require.Len(t, founders, 2)
	roles := map[string]string{}
	for _, f := range founders {
		roles[f.Name] = f.Role
		assert.Equal(t, "Acme", f.OrganizationName)
	}
	assert.Equal(t, map[string]string{"Jane Doe": "Founder, CEO", "John Smith": "Founder, CTO"}, roles)

	again, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, again.Inserted)
	assert.Zero(t, again.Updated)
	assert.Equal(t, 2, again.Unchanged)
	assert.Len(t, store.foundersOf(org.ID), 2)
}

func TestRun_FetchFailureSkipsOrganization(t *testing.T) {
	missing := testOrg("Gone", "https://gone.test/companies/gone")
	acme := testOrg("Acme", "https://acme.test/companies/acme")
	store := newMemoryStore(missing, acme)
	fetcher := &pageFetcher{pages: map[string]string{acme.CanonicalURL: acmePage}}

	summary, err := newTestRunner(t, store, fetcher, Options{Concurrency: 1}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Processed)
	assert.False(t, store.wasExtracted(missing.ID))
	assert.True(t, store.wasExtracted(acme.ID))
}

func TestRun_MissingURLSkips(t *testing.T) {
	org := testOrg("Nowhere", "")
	store := newMemoryStore(org)

	summary, err := newTestRunner(t, store, &pageFetcher{}, Options{}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, StatusSkipped, summary.Results[0].Status)
	assert.Equal(t, "no canonical URL", summary.Results[0].Reason)
}

func TestRun_PersistenceFailureIsolated(t *testing.T) {
	bad := testOrg("Bad", "https://bad.test/companies/bad")
	good := testOrg("Good", "https://good.test/companies/good")
	store := newMemoryStore(bad, good)
	store.failOn = "John Smith"
	fetcher := &pageFetcher{pages: map[string]string{
		bad.CanonicalURL:  acmePage,
		good.CanonicalURL: `<html><body><div><h2>Active Founders</h2><div>Ada Park</div><div>Founder</div></div></body></html>`,
	}}

	summary, err := newTestRunner(t, store, fetcher, Options{Concurrency: 2}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Processed)
	assert.False(t, store.wasExtracted(bad.ID))
	assert.True(t, store.wasExtracted(good.ID))

	for _, r := range summary.Results {
		if r.Organization.ID != bad.ID {
			continue
		}
		var perr *PersistenceError
		require.ErrorAs(t, r.Err, &perr)
		assert.Equal(t, bad.ID, perr.OrganizationID)
	}
}

func TestRun_ListFailure(t *testing.T) {
	store := newMemoryStore()
	store.listErr = errors.New("database is down")

	_, err := newTestRunner(t, store, &pageFetcher{}, Options{}).Run(context.Background())
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.ErrorContains(t, err, "database is down")
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	org := testOrg("Acme", "https://acme.test/companies/acme")
	store := newMemoryStore(org)
	fetcher := &pageFetcher{pages: map[string]string{org.CanonicalURL: acmePage}}

	summary, err := newTestRunner(t, store, fetcher, Options{DryRun: true}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.FoundersFound)
	assert.Zero(t, summary.Inserted)
	assert.Empty(t, store.foundersOf(org.ID))
	assert.False(t, store.wasExtracted(org.ID))
}

func TestRunOrganization_PeopleFallback(t *testing.T) {
	org := testOrg("Acme", "https://acme.test/companies/acme")
	fetcher := &pageFetcher{pages: map[string]string{
		org.CanonicalURL:             emptyPage,
		org.CanonicalURL + "/people": peoplePage,
	}}

	t.Run("enabled", func(t *testing.T) {
		store := newMemoryStore(org)
		res := newTestRunner(t, store, fetcher, Options{PeopleFallback: true}).RunOrganization(context.Background(), org)
		assert.Equal(t, StatusProcessed, res.Status)
		require.Len(t, res.Drafts, 1)
		assert.Equal(t, "Jane Doe", res.Drafts[0].Name)
		assert.Equal(t, "https://acme.test/companies/acme/people/jane-doe", res.Drafts[0].ProfileURL)
		assert.Equal(t, org.ID, res.Drafts[0].OrganizationID)
	})

	t.Run("disabled", func(t *testing.T) {
		store := newMemoryStore(org)
		res := newTestRunner(t, store, fetcher, Options{}).RunOrganization(context.Background(), org)
		assert.Equal(t, StatusProcessed, res.Status)
		assert.Empty(t, res.Drafts)
		assert.True(t, store.wasExtracted(org.ID))
	})
}

func TestRunOrganization_FlagsAliases(t *testing.T) {
	org := testOrg("Acme", "https://acme.test/companies/acme")
	store := newMemoryStore(org)
	store.founders[org.ID] = []types.FounderRecord{{ID: uuid.New(), OrganizationID: org.ID, Name: "Jane Doee"}}
	fetcher := &pageFetcher{pages: map[string]string{org.CanonicalURL: acmePage}}

	res := newTestRunner(t, store, fetcher, Options{AliasThreshold: 0.9}).RunOrganization(context.Background(), org)
	assert.Equal(t, StatusProcessed, res.Status)
	require.NotEmpty(t, res.Aliases)
	assert.Equal(t, "Jane Doe", res.Aliases[0].Name)
	assert.Equal(t, "Jane Doee", res.Aliases[0].Other)
	// Aliases are reported, never merged.
	assert.Len(t, store.foundersOf(org.ID), 3)
}

func TestRunOrganization_RejectsInvalidDraft(t *testing.T) {
	org := testOrg("Acme", "https://acme.test/companies/acme")
	org.ID = uuid.Nil
	store := newMemoryStore(org)
	fetcher := &pageFetcher{pages: map[string]string{org.CanonicalURL: acmePage}}

	res := newTestRunner(t, store, fetcher, Options{}).RunOrganization(context.Background(), org)
	assert.Equal(t, StatusProcessed, res.Status)
	assert.Equal(t, 2, res.Invalid)
	assert.Zero(t, res.Inserted)
}

func TestSummarize(t *testing.T) {
	results := []*OrgResult{
		{Status: StatusProcessed, Drafts: make([]types.FounderRecord, 2), Inserted: 1, Unchanged: 1, StrategyFailures: 1},
		nil,
		{Status: StatusSkipped, Reason: "HTTP 404"},
		{Status: StatusFailed, Reason: "boom"},
		{Status: StatusProcessed, Drafts: make([]types.FounderRecord, 1), Updated: 1},
	}
	s := Summarize(results)
	assert.Equal(t, 2, s.Processed)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 3, s.FoundersFound)
	assert.Equal(t, 1, s.Inserted)
	assert.Equal(t, 1, s.Updated)
	assert.Equal(t, 1, s.Unchanged)
	assert.Equal(t, 1, s.StrategyFailures)
	assert.Len(t, s.Results, 4)
}

func TestExtractPage_IgnoresPeopleLinksOutsideFoundersSection(t *testing.T) {
	const page = `<html><body>
<section>
  <h2>Active Founders</h2>
  <div><a href="/people/jane-doe">Jane Doe</a></div>
  <div>Founder, CEO</div>
</section>
<section>
  <h3>Jobs at Acme</h3>
  <p>Hiring manager: <a href="/people/sam-rivera">Sam Rivera</a>, Head of Engineering</p>
</section>
</body></html>`
	snap, err := fetch.BuildSnapshot("https://www.ycombinator.com/companies/acme", page, time.Now())
	require.NoError(t, err)

	drafts, _ := newTestRunner(t, nil, &pageFetcher{}, Options{DryRun: true}).ExtractPage(snap, "Acme")

	var got []string
	for _, d := range drafts {
		got = append(got, d.Name)
	}
	assert.Contains(t, got, "Jane Doe")
	assert.NotContains(t, got, "Sam Rivera")
}
