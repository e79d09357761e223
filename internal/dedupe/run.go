package dedupe

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	applogger "github.com/jonathan/founder-scout/internal/logger"
	"github.com/jonathan/founder-scout/internal/types"
)

// Store is the persistence the dedup pass needs.
type Store interface {
	ListOrganizations(ctx context.Context) ([]types.OrganizationRecord, error)
	MergeOrganizations(ctx context.Context, keepID uuid.UUID, discardIDs []uuid.UUID) error
}

// Options controls a dedup run.
type Options struct {
	// DryRun plans the merges without applying them.
	DryRun bool
}

// Report summarizes a dedup run.
type Report struct {
	Groups  []Group `json:"groups"`
	Removed int     `json:"removed"`
	DryRun  bool    `json:"dry_run"`
}

// Run plans and applies organization merges. Each group is merged in its own
// store transaction; a failure stops the run and reports what was already applied.
func Run(ctx context.Context, store Store, logger *zap.Logger, opts Options) (*Report, error) {
	logger = applogger.OrNop(logger)
	orgs, err := store.ListOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	report := &Report{Groups: Plan(orgs), DryRun: opts.DryRun}
	logger.Info("dedup plan ready",
		zap.Int("organizations", len(orgs)),
		zap.Int("groups", len(report.Groups)),
		zap.Bool("dry_run", opts.DryRun),
	)
	if opts.DryRun {
		for _, g := range report.Groups {
			report.Removed += len(g.Discard)
		}
		return report, nil
	}

	for _, g := range report.Groups {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		ids := make([]uuid.UUID, len(g.Discard))
		for i, d := range g.Discard {
			ids[i] = d.ID
		}
		if err := store.MergeOrganizations(ctx, g.Keep.ID, ids); err != nil {
			return report, fmt.Errorf("failed to merge duplicates of %q: %w", g.Key, err)
		}
		report.Removed += len(ids)
		logger.Info("merged duplicate organizations",
			zap.String("match", string(g.Match)),
			zap.String("key", g.Key),
			zap.String("kept", g.Keep.ID.String()),
			zap.Int("removed", len(ids)),
		)
	}
	return report, nil
}
