package extraction

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/jonathan/founder-scout/internal/config"
	applogger "github.com/jonathan/founder-scout/internal/logger"
	"github.com/jonathan/founder-scout/internal/types"
)

// Strategy is one independent way of finding people on a page.
type Strategy interface {
	Kind() types.Strategy
	Extract(snap *types.PageSnapshot) ([]types.PersonCandidate, error)
}

// Result is the outcome of running every strategy over one snapshot.
// Candidates are ordered by strategy priority, then by discovery order.
type Result struct {
	Candidates []types.PersonCandidate `json:"candidates"`
	Failures   []*StrategyError        `json:"-"`
}

// CountBy returns how many candidates each strategy contributed.
func (r Result) CountBy() map[types.Strategy]int {
	counts := make(map[types.Strategy]int)
	for _, c := range r.Candidates {
		counts[c.SourceStrategy]++
	}
	return counts
}

// Extractor runs an ordered list of strategies. It is safe for concurrent use
// as long as its strategies are, which the built-in ones are.
type Extractor struct {
	strategies []Strategy
	logger     *zap.Logger
}

// New builds an Extractor with the five built-in strategies compiled from cfg.
func New(cfg *config.ExtractionConfig, logger *zap.Logger) (*Extractor, error) {
	rules, err := NewRules(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithStrategies(logger, DefaultStrategies(rules)...), nil
}

// DefaultStrategies returns the built-in strategies in priority order.
func DefaultStrategies(rules *Rules) []Strategy {
	return []Strategy{
		NewStructuredDataStrategy(rules),
		NewSectionHeadingStrategy(rules),
		NewProfileLinkStrategy(rules),
		NewTextPatternStrategy(rules),
		NewCardStrategy(rules),
	}
}

// NewWithStrategies builds an Extractor over explicit strategies. They are run
// in priority order regardless of the order given.
func NewWithStrategies(logger *zap.Logger, strategies ...Strategy) *Extractor {
	logger = applogger.OrNop(logger)
	ordered := make([]Strategy, len(strategies))
	copy(ordered, strategies)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Kind() < ordered[j].Kind()
	})
	return &Extractor{strategies: ordered, logger: logger}
}

// Only returns an Extractor restricted to the given strategy kinds.
func (e *Extractor) Only(kinds ...types.Strategy) *Extractor {
	want := make(map[types.Strategy]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	var kept []Strategy
	for _, s := range e.strategies {
		if want[s.Kind()] {
			kept = append(kept, s)
		}
	}
	return &Extractor{strategies: kept, logger: e.logger}
}

// Kinds lists the strategies in execution order.
func (e *Extractor) Kinds() []types.Strategy {
	kinds := make([]types.Strategy, len(e.strategies))
	for i, s := range e.strategies {
		kinds[i] = s.Kind()
	}
	return kinds
}

// Extract runs every strategy over snap. It never fails: a strategy that
// returns an error or panics contributes no candidates and is reported in
// Result.Failures.
func (e *Extractor) Extract(snap *types.PageSnapshot) Result {
	var res Result
	if snap == nil {
		return res
	}
	for _, s := range e.strategies {
		cands, err := e.run(s, snap)
		if err != nil {
			res.Failures = append(res.Failures, err)
			e.logger.Warn("extraction strategy failed",
				zap.String("strategy", s.Kind().String()),
				zap.String("url", snap.URL),
				zap.Bool("panic", err.Panic),
				zap.Error(err.Cause),
			)
			continue
		}
		for i := range cands {
			cands[i].SourceStrategy = s.Kind()
		}
		res.Candidates = append(res.Candidates, cands...)
	}
	return res
}

func (e *Extractor) run(s Strategy, snap *types.PageSnapshot) (cands []types.PersonCandidate, serr *StrategyError) {
	defer func() {
		if r := recover(); r != nil {
			cands = nil
			serr = &StrategyError{Strategy: s.Kind(), Cause: fmt.Errorf("%v", r), Panic: true}
		}
	}()
	found, err := s.Extract(snap)
	if err != nil {
		return nil, &StrategyError{Strategy: s.Kind(), Cause: err}
	}
	return found, nil
}
