package extraction

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/founder-scout/internal/dom"
	"github.com/jonathan/founder-scout/internal/types"
)

// SectionHeadingStrategy reads the name/role lines that follow the founders
// section heading.
type SectionHeadingStrategy struct {
	rules *Rules
}

func NewSectionHeadingStrategy(rules *Rules) *SectionHeadingStrategy {
	return &SectionHeadingStrategy{rules: rules}
}

func (s *SectionHeadingStrategy) Kind() types.Strategy { return types.StrategySectionHeading }

func (s *SectionHeadingStrategy) Extract(snap *types.PageSnapshot) ([]types.PersonCandidate, error) {
	var (
		lines []string
		scope *goquery.Selection
	)
	if snap.HasDOM() {
		if container := s.rules.foundersContainer(snap.DOM); container != nil {
			scope = container
			lines = dom.Lines(container)
		}
	}
	if scope == nil {
		lines = dom.SplitLines(snap.VisibleText)
	}

	start := s.rules.markerLine(lines)
	if start < 0 {
		return nil, nil
	}
	start++

	cfg := s.rules.cfg
	limit := min(len(lines), start+cfg.MaxSectionLines)
	base := baseURL(snap.URL)
	seen := make(map[string]bool)

	var out []types.PersonCandidate
	for i := start; i < limit; i++ {
		line := lines[i]
		if s.rules.isEndMarker(line) {
			break
		}
		if !looksLikeName(line) || containsFold(line, "founder") || s.rules.isStaff(line) {
			continue
		}
		key := types.IdentityKey(line)
		if seen[key] {
			continue
		}

		follow := lines[i+1 : min(len(lines), i+3)]
		role, ok := "", false
		for _, next := range follow {
			if role, ok = coarseRole(next); ok {
				break
			}
		}
		if !ok {
			continue
		}
		seen[key] = true

		cand := types.PersonCandidate{
			Name:           line,
			Role:           role,
			SectionContext: strings.Join(append([]string{line}, follow...), " | "),
		}
		if scope != nil {
			cand.ProfileURL = s.rules.profileLinkFor(scope, base, line)
			cand.LinkedInURL, cand.TwitterURL = s.rules.SocialLinks(scope, base, line)
		}
		out = append(out, cand)
	}
	return out, nil
}
