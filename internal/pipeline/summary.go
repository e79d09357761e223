package pipeline

import (
	"go.uber.org/zap"

	"github.com/jonathan/founder-scout/internal/reconcile"
	"github.com/jonathan/founder-scout/internal/types"
)

// Status is the outcome of one organization in a run.
type Status string

const (
	StatusProcessed Status = "processed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// OrgResult is what happened to one organization.
type OrgResult struct {
	Organization     types.OrganizationRecord `json:"organization"`
	Status           Status                   `json:"status"`
	Reason           string                   `json:"reason,omitempty"`
	Drafts           []types.FounderRecord    `json:"founders,omitempty"`
	Sources          map[types.Strategy]int   `json:"sources,omitempty"`
	Aliases          []reconcile.AliasPair    `json:"aliases,omitempty"`
	Inserted         int                      `json:"inserted"`
	Updated          int                      `json:"updated"`
	Unchanged        int                      `json:"unchanged"`
	Invalid          int                      `json:"invalid"`
	StrategyFailures int                      `json:"strategy_failures"`
	Err              error                    `json:"-"`
}

func (r OrgResult) skip(logger *zap.Logger, reason string) OrgResult {
	r.Status = StatusSkipped
	r.Reason = reason
	logger.Warn("organization skipped", zap.String("reason", reason))
	return r
}

func (r OrgResult) fail(logger *zap.Logger, err error) OrgResult {
	r.Status = StatusFailed
	r.Reason = err.Error()
	r.Err = err
	logger.Error("organization failed", zap.Error(err))
	return r
}

// Summary aggregates a run.
type Summary struct {
	Processed        int         `json:"processed"`
	Skipped          int         `json:"skipped"`
	Failed           int         `json:"failed"`
	FoundersFound    int         `json:"founders_found"`
	Inserted         int         `json:"inserted"`
	Updated          int         `json:"updated"`
	Unchanged        int         `json:"unchanged"`
	StrategyFailures int         `json:"strategy_failures"`
	Results          []OrgResult `json:"results"`
}

// Summarize folds per-organization results into a summary. Nil entries are
// organizations that were never started.
func Summarize(results []*OrgResult) *Summary {
	s := &Summary{}
	for _, r := range results {
		if r == nil {
			continue
		}
		switch r.Status {
		case StatusProcessed:
			s.Processed++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
		s.FoundersFound += len(r.Drafts)
		s.Inserted += r.Inserted
		s.Updated += r.Updated
		s.Unchanged += r.Unchanged
		s.StrategyFailures += r.StrategyFailures
		s.Results = append(s.Results, *r)
	}
	return s
}
