package extraction

import (
	"strings"

	"github.com/jonathan/founder-scout/internal/dom"
	"github.com/jonathan/founder-scout/internal/types"
)

// ProfileLinkStrategy treats person-profile links as founders when they sit
// under the founders heading or near the word "founder".
type ProfileLinkStrategy struct {
	rules *Rules
}

func NewProfileLinkStrategy(rules *Rules) *ProfileLinkStrategy {
	return &ProfileLinkStrategy{rules: rules}
}

func (s *ProfileLinkStrategy) Kind() types.Strategy { return types.StrategyProfileLink }

func (s *ProfileLinkStrategy) Extract(snap *types.PageSnapshot) ([]types.PersonCandidate, error) {
	if !snap.HasDOM() {
		return nil, nil
	}
	base := baseURL(snap.URL)
	founders := s.rules.foundersContainer(snap.DOM)
	seen := make(map[string]bool)

	var out []types.PersonCandidate
	for _, a := range dom.Anchors(snap.DOM.Selection, base) {
		if !s.rules.IsProfileLink(a.Href) {
			continue
		}
		name := collapse(a.Text)
		if c := wordCount(name); c < 2 || c > 4 {
			continue
		}
		key := types.IdentityKey(name)
		if seen[key] || s.rules.isStaff(name) {
			continue
		}

		ancestors := s.rules.scope(a.Selection, founders)
		context := ""
		for _, anc := range ancestors {
			if strings.Contains(strings.ToLower(dom.Text(anc)), s.rules.marker) {
				context = s.rules.cfg.SectionMarker
				break
			}
		}
		if context == "" {
			region := a.Selection
			if len(ancestors) > 0 {
				region = ancestors[len(ancestors)-1]
			}
			window := s.rules.textWindow(strings.ToLower(dom.Text(region)), name)
			if !strings.Contains(window, "founder") || s.rules.windowExcluded(window) {
				continue
			}
			context = "founder mentioned near name"
		}
		seen[key] = true

		role := "Founder"
		if len(ancestors) > 0 {
			role = roleAfterName(dom.Lines(ancestors[min(len(ancestors), 2)-1]), name)
		}
		cand := types.PersonCandidate{
			Name:           name,
			Role:           role,
			ProfileURL:     a.Href,
			SectionContext: context,
		}
		cand.LinkedInURL, cand.TwitterURL = s.rules.SocialLinks(s.rules.within(a.Selection, founders), base, name)
		out = append(out, cand)
	}
	return out, nil
}

// roleAfterName derives a role from the two lines following name, defaulting to "Founder".
func roleAfterName(lines []string, name string) string {
	for i, line := range lines {
		if !strings.EqualFold(line, name) {
			continue
		}
		for _, next := range lines[i+1 : min(len(lines), i+3)] {
			if role, ok := coarseRole(next); ok {
				return role
			}
		}
		break
	}
	return "Founder"
}
