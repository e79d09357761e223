// Package pipeline runs founder extraction over pending organizations:
// fetch, extract, filter, reconcile, then fill-only upsert.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/founder-scout/internal/extraction"
	"github.com/jonathan/founder-scout/internal/fetch"
	"github.com/jonathan/founder-scout/internal/filter"
	applogger "github.com/jonathan/founder-scout/internal/logger"
	"github.com/jonathan/founder-scout/internal/reconcile"
	"github.com/jonathan/founder-scout/internal/types"
)

// Store is the persistence the run loop needs.
type Store interface {
	FindOrganizationsPendingExtraction(ctx context.Context, filter types.PendingFilter) ([]types.OrganizationRecord, error)
	UpsertFounder(ctx context.Context, rec types.FounderRecord) (types.UpsertOutcome, error)
	ListFounderNames(ctx context.Context, orgID uuid.UUID) ([]string, error)
	MarkOrganizationExtracted(ctx context.Context, orgID uuid.UUID, at time.Time) error
}

// Options tunes a run.
type Options struct {
	// Concurrency is the number of organizations processed at once.
	Concurrency int
	// RequestDelay is the pause a worker takes after each organization.
	RequestDelay time.Duration
	// FetchTimeout bounds each page fetch; 0 means no extra bound.
	FetchTimeout time.Duration
	// AliasThreshold is the Jaro-Winkler score that flags a possible alias; 0 disables.
	AliasThreshold float64
	Limit          int
	StaleAfter     time.Duration
	// DryRun extracts without writing to the store.
	DryRun bool
	// PeopleFallback extracts from <url>/people when the main page yields nobody.
	PeopleFallback bool
}

// Runner executes extraction runs.
type Runner struct {
	store     Store
	fetcher   fetch.Fetcher
	extractor *extraction.Extractor
	people    *extraction.Extractor
	filter    *filter.Filter
	validate  *validator.Validate
	logger    *zap.Logger
	opts      Options
	now       func() time.Time
}

// NewRunner wires a runner. store may be nil when opts.DryRun is set.
func NewRunner(store Store, fetcher fetch.Fetcher, extractor *extraction.Extractor, noise *filter.Filter, logger *zap.Logger, opts Options) *Runner {
	logger = applogger.OrNop(logger)
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Runner{
		store:     store,
		fetcher:   fetcher,
		extractor: extractor,
		people:    extractor.Only(types.StrategyProfileLink),
		filter:    noise,
		validate:  validator.New(),
		logger:    logger,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run processes every pending organization. A failing organization is
// recorded in the summary and never stops the run; the returned error is
// reserved for failing to list organizations or for cancellation.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	if r.store == nil {
		return nil, errors.New("pipeline run requires a store")
	}
	orgs, err := r.store.FindOrganizationsPendingExtraction(ctx, types.PendingFilter{
		Limit:      r.opts.Limit,
		StaleAfter: r.opts.StaleAfter,
	})
	if err != nil {
		return nil, &PersistenceError{Operation: "find pending organizations", Cause: err}
	}
	r.logger.Info("starting extraction run",
		zap.Int("organizations", len(orgs)),
		zap.Int("concurrency", r.opts.Concurrency),
		zap.Bool("dry_run", r.opts.DryRun))

	results := make([]*OrgResult, len(orgs))
	var g errgroup.Group
	g.SetLimit(r.opts.Concurrency)
	for i, org := range orgs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res := r.RunOrganization(ctx, org)
			results[i] = &res
			sleepCtx(ctx, r.opts.RequestDelay)
			return nil
		})
	}
	_ = g.Wait()

	summary := Summarize(results)
	r.logger.Info("extraction run finished",
		zap.Int("processed", summary.Processed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int("founders_found", summary.FoundersFound),
		zap.Int("inserted", summary.Inserted),
		zap.Int("updated", summary.Updated),
		zap.Int("strategy_failures", summary.StrategyFailures))
	return summary, ctx.Err()
}

// RunOrganization fetches, extracts and persists the founders of one organization.
func (r *Runner) RunOrganization(ctx context.Context, org types.OrganizationRecord) OrgResult {
	res := OrgResult{Organization: org}
	logger := r.logger.With(zap.String("organization", org.DisplayName()), zap.String("organization_id", org.ID.String()))

	pageURL := strings.TrimSpace(org.CanonicalURL)
	if pageURL == "" {
		return res.skip(logger, "no canonical URL")
	}

	snap, err := r.fetchPage(ctx, pageURL)
	if err != nil {
		return res.skip(logger, err.Error())
	}

	drafts, ext := r.ExtractPage(snap, org.DisplayName())
	res.StrategyFailures = len(ext.Failures)
	res.Sources = ext.CountBy()

	if len(drafts) == 0 && r.opts.PeopleFallback {
		drafts = r.extractPeoplePage(ctx, logger, pageURL, org.DisplayName())
	}

	for i := range drafts {
		drafts[i].OrganizationID = org.ID
	}
	res.Drafts = drafts
	if r.opts.DryRun {
		res.Status = StatusProcessed
		return res
	}
	return r.persist(ctx, logger, res)
}

// ExtractPage runs the pure part of the pipeline on one snapshot:
// extraction, noise filtering and per-scrape reconciliation.
func (r *Runner) ExtractPage(snap *types.PageSnapshot, orgName string) ([]types.FounderRecord, extraction.Result) {
	return extractWith(r.extractor, r.filter, snap, orgName)
}

func extractWith(ex *extraction.Extractor, noise *filter.Filter, snap *types.PageSnapshot, orgName string) ([]types.FounderRecord, extraction.Result) {
	ext := ex.Extract(snap)
	kept, _ := noise.Apply(ext.Candidates, orgName)
	drafts := reconcile.Merge(kept)
	for i := range drafts {
		drafts[i].OrganizationName = orgName
	}
	return drafts, ext
}

func (r *Runner) extractPeoplePage(ctx context.Context, logger *zap.Logger, pageURL, orgName string) []types.FounderRecord {
	peopleURL := strings.TrimRight(pageURL, "/") + "/people"
	snap, err := r.fetchPage(ctx, peopleURL)
	if err != nil {
		logger.Debug("people page unavailable", zap.String("url", peopleURL), zap.Error(err))
		return nil
	}
	drafts, _ := extractWith(r.people, r.filter, snap, orgName)
	logger.Debug("people page fallback", zap.String("url", peopleURL), zap.Int("founders", len(drafts)))
	return drafts
}

func (r *Runner) fetchPage(ctx context.Context, pageURL string) (*types.PageSnapshot, error) {
	if r.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.FetchTimeout)
		defer cancel()
	}
	return r.fetcher.Fetch(ctx, pageURL)
}

func (r *Runner) persist(ctx context.Context, logger *zap.Logger, res OrgResult) OrgResult {
	org := res.Organization

	known, err := r.store.ListFounderNames(ctx, org.ID)
	if err != nil {
		return res.fail(logger, &PersistenceError{OrganizationID: org.ID, Operation: "list founders", Cause: err})
	}
	res.Aliases = reconcile.FlagAliases(reconcile.Names(res.Drafts), known, r.opts.AliasThreshold)
	for _, a := range res.Aliases {
		logger.Warn("possible alias, not merged",
			zap.String("name", a.Name),
			zap.String("other", a.Other),
			zap.Float64("similarity", a.Similarity))
	}

	for _, d := range res.Drafts {
		if err := r.validate.Struct(d); err != nil {
			res.Invalid++
			logger.Warn("founder draft rejected", zap.String("name", d.Name), zap.Error(err))
			continue
		}
		out, err := r.store.UpsertFounder(ctx, d)
		if err != nil {
			return res.fail(logger, &PersistenceError{OrganizationID: org.ID, Operation: "upsert founder " + d.Name, Cause: err})
		}
		switch out.Action {
		case types.UpsertInserted:
			res.Inserted++
			logger.Debug("founder inserted", zap.String("name", d.Name))
		case types.UpsertUpdated:
			res.Updated++
			logger.Debug("founder updated", zap.String("name", d.Name), zap.Any("fields", out.Changed))
		default:
			res.Unchanged++
		}
	}

	if err := r.store.MarkOrganizationExtracted(ctx, org.ID, r.now()); err != nil {
		return res.fail(logger, &PersistenceError{OrganizationID: org.ID, Operation: "mark extracted", Cause: err})
	}
	res.Status = StatusProcessed
	return res
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
