package extraction

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/jonathan/founder-scout/internal/config"
	"github.com/jonathan/founder-scout/internal/dom"
)

// Rules is the compiled, read-only form of an ExtractionConfig shared by all strategies.
type Rules struct {
	cfg         *config.ExtractionConfig
	profilePath *regexp.Regexp
	staff       map[string]bool
	arrayKeys   map[string]bool
	memberKeys  map[string]bool
	marker      string
	endMarkers  []string
}

// NewRules compiles cfg. A nil cfg means the defaults.
func NewRules(cfg *config.ExtractionConfig) (*Rules, error) {
	if cfg == nil {
		cfg = config.DefaultExtractionConfig()
	}
	profilePath, err := regexp.Compile(cfg.ProfilePathPattern)
	if err != nil {
		return nil, &RulesError{Message: "invalid profile_path_pattern", Cause: err}
	}
	if strings.TrimSpace(cfg.SectionMarker) == "" {
		return nil, &RulesError{Message: "section_marker is empty"}
	}
	for _, sel := range cfg.CardSelectors {
		// goquery silently matches nothing for selectors it cannot compile.
		if _, err := cascadia.Compile(sel); err != nil {
			return nil, &RulesError{Message: "invalid card selector " + sel, Cause: err}
		}
	}

	r := &Rules{
		cfg:         cfg,
		profilePath: profilePath,
		staff:       lowerSet(cfg.StaffDenylist),
		arrayKeys:   make(map[string]bool, len(cfg.FounderArrayKeys)),
		memberKeys:  make(map[string]bool, len(cfg.MemberArrayKeys)),
		marker:      strings.ToLower(cfg.SectionMarker),
	}
	for _, k := range cfg.FounderArrayKeys {
		r.arrayKeys[k] = true
	}
	for _, k := range cfg.MemberArrayKeys {
		r.memberKeys[k] = true
	}
	for _, m := range cfg.EndMarkers {
		r.endMarkers = append(r.endMarkers, strings.ToLower(strings.TrimSpace(m)))
	}
	return r, nil
}

// Config returns the configuration the rules were compiled from.
func (r *Rules) Config() *config.ExtractionConfig {
	return r.cfg
}

// IsProfileLink reports whether href points at a person profile.
func (r *Rules) IsProfileLink(href string) bool {
	return r.profilePath.MatchString(href)
}

func (r *Rules) isStaff(name string) bool {
	return r.staff[strings.ToLower(collapse(name))]
}

// isEndMarker matches a line equal to an end marker or starting with one
// followed by a non-letter, so "Problem:" ends the section but "Problematic" does not.
func (r *Rules) isEndMarker(line string) bool {
	lower := strings.ToLower(strings.TrimSpace(line))
	for _, m := range r.endMarkers {
		if m == "" || !strings.HasPrefix(lower, m) {
			continue
		}
		rest := lower[len(m):]
		if rest == "" {
			return true
		}
		next, _ := utf8.DecodeRuneInString(rest)
		if !unicode.IsLetter(next) {
			return true
		}
	}
	return false
}

// textWindow returns the lowercased text within the configured radius around
// the first occurrence of name, or "" when name does not occur.
func (r *Rules) textWindow(lowerText, name string) string {
	pos := strings.Index(lowerText, strings.ToLower(name))
	if pos < 0 {
		return ""
	}
	start := max(0, pos-r.cfg.TextWindowRadius)
	end := min(len(lowerText), pos+len(name)+r.cfg.TextWindowRadius)
	return lowerText[start:end]
}

func (r *Rules) windowExcluded(window string) bool {
	for _, ex := range r.cfg.WindowExclusions {
		if strings.Contains(window, strings.ToLower(ex)) {
			return true
		}
	}
	return false
}

// profileLinkFor finds a profile link under scope whose text is name.
func (r *Rules) profileLinkFor(scope *goquery.Selection, base *url.URL, name string) string {
	for _, a := range dom.Anchors(scope, base) {
		if r.IsProfileLink(a.Href) && strings.EqualFold(collapse(a.Text), name) {
			return a.Href
		}
	}
	return ""
}

func lowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(collapse(item))] = true
	}
	return set
}

func baseURL(raw string) *url.URL {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	return u
}
