// Package filter drops extracted candidates that are not people.
package filter

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jonathan/founder-scout/internal/config"
	applogger "github.com/jonathan/founder-scout/internal/logger"
	"github.com/jonathan/founder-scout/internal/types"
)

// Reason says why a name was rejected.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonWordCount      Reason = "word_count"
	ReasonCapitalization Reason = "capitalization"
	ReasonAllCaps        Reason = "all_caps"
	ReasonStaff          Reason = "staff"
	ReasonStructural     Reason = "structural"
	ReasonConjunction    Reason = "conjunction"
	ReasonOrganization   Reason = "organization_name"
)

// Rejection records a dropped candidate.
type Rejection struct {
	Candidate types.PersonCandidate
	Reason    Reason
}

// Filter applies the noise rules. It holds read-only sets built once from config.
type Filter struct {
	staff   map[string]bool
	phrases map[string]bool
	tokens  map[string]bool
	logger  *zap.Logger
}

// New builds a Filter from the denylist and structural data in cfg.
func New(cfg *config.ExtractionConfig, logger *zap.Logger) *Filter {
	if cfg == nil {
		cfg = config.DefaultExtractionConfig()
	}
	logger = applogger.OrNop(logger)
	return &Filter{
		staff:   lowerSet(cfg.StaffDenylist),
		phrases: lowerSet(cfg.StructuralPhrases),
		tokens:  lowerSet(cfg.StructuralTokens),
		logger:  logger,
	}
}

// Allow reports whether name can be a person's name on the page of orgName.
func (f *Filter) Allow(name, orgName string) (bool, Reason) {
	words := strings.Fields(name)
	if len(words) < 2 || len(words) > 4 {
		return false, ReasonWordCount
	}
	for _, w := range words {
		r, _ := utf8.DecodeRuneInString(w)
		if !unicode.IsUpper(r) {
			return false, ReasonCapitalization
		}
	}
	joined := strings.Join(words, " ")
	if isAllCaps(joined) {
		return false, ReasonAllCaps
	}

	lower := strings.ToLower(joined)
	if f.staff[lower] {
		return false, ReasonStaff
	}
	if strings.EqualFold(words[0], "and") {
		return false, ReasonConjunction
	}
	if f.phrases[lower] {
		return false, ReasonStructural
	}
	for _, w := range words {
		if f.tokens[strings.ToLower(strings.Trim(w, ".,;:!?()[]\"'"))] {
			return false, ReasonStructural
		}
	}
	if isOrganizationName(lower, orgName) {
		return false, ReasonOrganization
	}
	return true, ReasonNone
}

// Apply splits cands into those that pass and those dropped. Order is preserved.
func (f *Filter) Apply(cands []types.PersonCandidate, orgName string) (kept []types.PersonCandidate, dropped []Rejection) {
	for _, c := range cands {
		ok, reason := f.Allow(c.Name, orgName)
		if ok {
			c.Name = strings.Join(strings.Fields(c.Name), " ")
			kept = append(kept, c)
			continue
		}
		dropped = append(dropped, Rejection{Candidate: c, Reason: reason})
		f.logger.Debug("candidate rejected",
			zap.String("name", c.Name),
			zap.String("reason", string(reason)),
			zap.String("strategy", c.SourceStrategy.String()),
		)
	}
	return kept, dropped
}

func isAllCaps(s string) bool {
	letters := 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return letters > 1
}

// isOrganizationName matches the organization's display name and its
// word-boundary truncations, e.g. "Acme Robotics" for "Acme Robotics Inc".
func isOrganizationName(lowerName, orgName string) bool {
	org := strings.ToLower(strings.Join(strings.Fields(orgName), " "))
	if org == "" {
		return false
	}
	if lowerName == org {
		return true
	}
	return strings.HasPrefix(org, lowerName+" ")
}

func lowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(strings.Join(strings.Fields(item), " "))] = true
	}
	return set
}
