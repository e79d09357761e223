package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/founder-scout/internal/dom"
	"github.com/jonathan/founder-scout/internal/types"
)

// StructuredDataStrategy reads founders from the page's embedded client state.
// Its candidates carry the highest merge priority.
type StructuredDataStrategy struct {
	rules *Rules
}

func NewStructuredDataStrategy(rules *Rules) *StructuredDataStrategy {
	return &StructuredDataStrategy{rules: rules}
}

func (s *StructuredDataStrategy) Kind() types.Strategy { return types.StrategyStructuredData }

func (s *StructuredDataStrategy) Extract(snap *types.PageSnapshot) ([]types.PersonCandidate, error) {
	doc, err := decodeStructured(snap.StructuredData)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	base := baseURL(snap.URL)
	var out []types.PersonCandidate
	Walk(doc, s.rules.cfg.MaxJSONDepth, func(n Node) bool {
		obj, ok := n.Object()
		if !ok {
			return true
		}
		name, _ := obj["name"].(string)
		name = collapse(name)
		if c := wordCount(name); c < 2 || c > 4 {
			return true
		}
		role := firstString(obj, "role", "title", "position")
		if !s.isFounder(n, obj, role) {
			return true
		}
		if role == "" {
			role = "Founder"
		}

		cand := types.PersonCandidate{
			Name:            name,
			Role:            role,
			PreviousCompany: firstString(obj, "previousCompany", "previous_company"),
			LinkedInURL:     dom.NormalizeURL(firstString(obj, "linkedin", "linkedinUrl", "linkedin_url")),
			TwitterURL:      dom.NormalizeURL(firstString(obj, "twitter", "twitterUrl", "twitter_url", "x")),
			Bio:             firstString(obj, "bio", "description"),
			SectionContext:  "$." + strings.Join(n.Path, "."),
		}
		if profile := firstString(obj, "profileUrl", "ycUrl", "yc_url"); profile != "" {
			cand.ProfileURL = dom.ResolveHref(base, profile)
		}
		out = append(out, cand)
		return true
	})
	return out, nil
}

// isFounder accepts an object whose role mentions a founder, that is a direct
// member of a founder array, or that carries a scalar founder-named key such as "isFounder".
// A direct member of a team array needs one of its own string values to
// mention a founder. A company object holding a "founders" array is not itself a founder.
func (s *StructuredDataStrategy) isFounder(n Node, obj map[string]any, role string) bool {
	if containsFold(role, "founder") {
		return true
	}
	if l := len(n.Path); l >= 2 && n.Path[l-1] == ArrayElement {
		parent := n.Path[l-2]
		if s.rules.arrayKeys[parent] {
			return true
		}
		if s.rules.memberKeys[parent] && mentionsFounder(obj) {
			return true
		}
	}
	for k, v := range obj {
		if !containsFold(k, "founder") {
			continue
		}
		switch t := v.(type) {
		case bool:
			if t {
				return true
			}
		case string, float64:
			return true
		}
	}
	return false
}

// mentionsFounder looks only at obj's own string values, never nested ones.
func mentionsFounder(obj map[string]any) bool {
	for _, v := range obj {
		if s, ok := v.(string); ok && containsFold(s, "founder") {
			return true
		}
	}
	return false
}

// decodeStructured accepts an already decoded document or raw JSON bytes.
func decodeStructured(data any) (any, error) {
	var raw []byte
	switch v := data.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		raw = []byte(v)
	case map[string]any, []any:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported structured data type %T", data)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("malformed structured data: %w", err)
	}
	return doc, nil
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}
