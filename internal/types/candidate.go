package types

import "strings"

// Strategy identifies which extractor produced a candidate. The numeric order
// is the merge priority: lower values win field conflicts.
type Strategy int

const (
	StrategyStructuredData Strategy = iota
	StrategySectionHeading
	StrategyProfileLink
	StrategyTextPattern
	StrategyCardStructure
)

var strategyNames = map[Strategy]string{
	StrategyStructuredData: "structured_data",
	StrategySectionHeading: "section_heading",
	StrategyProfileLink:    "profile_link",
	StrategyTextPattern:    "text_pattern",
	StrategyCardStructure:  "card_structure",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText lets strategies appear by name in JSON output.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// PersonCandidate is a provisional extraction result, never persisted directly.
type PersonCandidate struct {
	Name            string   `json:"name"`
	Role            string   `json:"role,omitempty"`
	PreviousCompany string   `json:"previous_company,omitempty"`
	LinkedInURL     string   `json:"linkedin_url,omitempty"`
	TwitterURL      string   `json:"twitter_url,omitempty"`
	ProfileURL      string   `json:"profile_url,omitempty"`
	Bio             string   `json:"bio,omitempty"`
	SourceStrategy  Strategy `json:"source_strategy"`
	SectionContext  string   `json:"section_context,omitempty"`
}

// IdentityKey is the reconciliation key: case-insensitive exact name.
func IdentityKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
