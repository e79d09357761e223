package extraction

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/founder-scout/internal/dom"
	"github.com/jonathan/founder-scout/internal/types"
)

// previousCompany matches "prev. Meta" style suffixes on role lines.
var previousCompany = regexp.MustCompile(`(?i)[|,]?[ \t]*prev\.?[ \t]+([A-Za-z0-9][A-Za-z0-9 &.]*)`)

// CardStrategy reads founder cards: elements whose class suggests a founder or
// team member, with the name on the first line and a founder or executive role
// on a later one. The card or one of its ancestors must mention "founder".
type CardStrategy struct {
	rules *Rules
}

func NewCardStrategy(rules *Rules) *CardStrategy {
	return &CardStrategy{rules: rules}
}

func (s *CardStrategy) Kind() types.Strategy { return types.StrategyCardStructure }

func (s *CardStrategy) Extract(snap *types.PageSnapshot) ([]types.PersonCandidate, error) {
	cfg := s.rules.cfg
	if !snap.HasDOM() || len(cfg.CardSelectors) == 0 {
		return nil, nil
	}
	base := baseURL(snap.URL)
	founders := s.rules.foundersContainer(snap.DOM)
	seen := make(map[string]bool)
	visited := 0

	var out []types.PersonCandidate
	snap.DOM.Find(strings.Join(cfg.CardSelectors, ", ")).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if visited >= cfg.MaxCards {
			return false
		}
		visited++

		lines := dom.Lines(card)
		if len(lines) == 0 {
			return true
		}
		name := lines[0]
		if !looksLikeName(name) || containsFold(name, "founder") || s.rules.isStaff(name) {
			return true
		}
		key := types.IdentityKey(name)
		if seen[key] {
			return true
		}

		role, prev := "", ""
		for _, line := range lines[1:] {
			if mentionsLeadership(line) {
				role, prev = splitPrevious(line)
				break
			}
		}
		if role == "" {
			return true
		}
		if !containsFold(strings.Join(lines, "\n"), "founder") && !s.founderNearby(card, founders) {
			return true
		}
		seen[key] = true

		cand := types.PersonCandidate{
			Name:            name,
			Role:            role,
			PreviousCompany: prev,
			ProfileURL:      s.rules.profileLinkFor(card, base, name),
			SectionContext:  strings.Join(lines[:min(len(lines), 3)], " | "),
		}
		cand.LinkedInURL, cand.TwitterURL = s.rules.SocialLinks(card, base, name)
		out = append(out, cand)
		return true
	})
	return out, nil
}

// founderNearby reports whether an ancestor within the card's scope mentions "founder".
func (s *CardStrategy) founderNearby(card, founders *goquery.Selection) bool {
	for _, anc := range s.rules.scope(card, founders) {
		if containsFold(dom.Text(anc), "founder") {
			return true
		}
	}
	return false
}

// splitPrevious separates "Founder, CEO | prev. Meta" into role and previous company.
func splitPrevious(line string) (role, prev string) {
	loc := previousCompany.FindStringSubmatchIndex(line)
	if loc == nil {
		return strings.TrimSpace(line), ""
	}
	prev = strings.TrimSpace(line[loc[2]:loc[3]])
	role = strings.TrimSpace(line[:loc[0]] + line[loc[1]:])
	role = strings.Trim(role, " |,")
	return role, prev
}
