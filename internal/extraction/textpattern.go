package extraction

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jonathan/founder-scout/internal/types"
)

const (
	// Names stay on one line: [ \t] rather than \s.
	patName     = `[A-Z][A-Za-z'-]+(?:[ \t]+[A-Z][A-Za-z'-]+){0,3}`
	patNameList = patName + `(?:(?:,[ \t]*|[ \t]+and[ \t]+|[ \t]+&[ \t]+)` + patName + `)*`
	patHandle   = `@[A-Za-z][A-Za-z0-9_-]+`
	patWeAre    = `(?i:hi yc[—-]?[ \t]*)?(?i:we[’']re|we are)`
	patFounders = `(?i:(?:the[ \t]+)?(?:co-?)?founders?)`
)

// textPatterns are applied to the visible text in order. Every capture group is
// either a single name, a handle or a list of names.
var textPatterns = []*regexp.Regexp{
	regexp.MustCompile(patWeAre + `[ \t]+(` + patHandle + `)[ \t]+and[ \t]+(` + patHandle + `)`),
	regexp.MustCompile(`(` + patHandle + `)[ \t]+and[ \t]+(` + patHandle + `),?[ \t]*(?:` + patFounders + `|(?i:former))`),
	regexp.MustCompile(patWeAre + `[ \t]+(` + patNameList + `),?[ \t]+(?:` + patFounders + `|(?i:former))`),
	regexp.MustCompile(`(` + patNameList + `)[ \t]+(?i:are|is|were|was)[ \t]+` + patFounders),
	regexp.MustCompile(`(?i:founded by)[ \t]+(` + patNameList + `)`),
}

var nameListSep = regexp.MustCompile(`,[ \t]*|[ \t]+and[ \t]+|[ \t]+&[ \t]+`)

// TextPatternStrategy matches founder sentences such as "We're Jane Doe and
// John Smith, founders of ..." or "Founded by Jane Doe" in the visible text.
type TextPatternStrategy struct {
	rules *Rules
}

func NewTextPatternStrategy(rules *Rules) *TextPatternStrategy {
	return &TextPatternStrategy{rules: rules}
}

func (s *TextPatternStrategy) Kind() types.Strategy { return types.StrategyTextPattern }

func (s *TextPatternStrategy) Extract(snap *types.PageSnapshot) ([]types.PersonCandidate, error) {
	if strings.TrimSpace(snap.VisibleText) == "" {
		return nil, nil
	}
	// Casers carry state; one per call keeps the strategy safe for concurrent use.
	caser := cases.Title(language.English)
	base := baseURL(snap.URL)
	seen := make(map[string]bool)

	var out []types.PersonCandidate
	for _, re := range textPatterns {
		for _, m := range re.FindAllStringSubmatch(snap.VisibleText, -1) {
			for _, group := range m[1:] {
				for _, name := range splitNames(group, caser) {
					key := types.IdentityKey(name)
					if seen[key] || wordCount(name) < 2 || wordCount(name) > 4 || s.rules.isStaff(name) {
						continue
					}
					seen[key] = true
					cand := types.PersonCandidate{
						Name:           name,
						Role:           "Founder",
						SectionContext: collapse(m[0]),
					}
					if snap.HasDOM() {
						cand.LinkedInURL, cand.TwitterURL = s.rules.socialForName(snap.DOM, base, name)
					}
					out = append(out, cand)
				}
			}
		}
	}
	return out, nil
}

// splitNames breaks a captured group into names. Handles lose the sigil, their
// separators become spaces, and they are title-cased: "@jane_doe" -> "Jane Doe".
func splitNames(group string, caser cases.Caser) []string {
	group = strings.TrimSpace(group)
	if group == "" {
		return nil
	}
	if strings.HasPrefix(group, "@") {
		handle := strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimPrefix(group, "@"))
		return []string{caser.String(collapse(handle))}
	}
	var names []string
	for _, part := range nameListSep.Split(group, -1) {
		if part = collapse(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}
