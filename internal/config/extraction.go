package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	rootschemas "github.com/jonathan/founder-scout/schemas"
	"github.com/jonathan/founder-scout/internal/schemas"
)

// ExtractionConfig is the tunable data behind extraction and noise filtering.
// It is loaded once at start and only read afterwards.
type ExtractionConfig struct {
	// SectionMarker is the heading phrase that opens the founders section.
	SectionMarker string `json:"section_marker" validate:"required"`
	// EndMarkers close the founders section when a line starts with one of them.
	EndMarkers []string `json:"end_markers" validate:"dive,required"`
	// StaffDenylist holds platform staff names that are never founders.
	StaffDenylist []string `json:"staff_denylist" validate:"dive,required"`
	// StructuralPhrases are whole-name matches that denote page chrome.
	StructuralPhrases []string `json:"structural_phrases" validate:"dive,required"`
	// StructuralTokens reject a name when any of its words is one of them.
	StructuralTokens []string `json:"structural_tokens" validate:"dive,required"`
	// FounderArrayKeys are JSON array keys whose elements are founders.
	FounderArrayKeys []string `json:"founder_array_keys" validate:"dive,required"`
	// MemberArrayKeys are JSON array keys whose elements are founders only when
	// one of their own string values mentions a founder.
	MemberArrayKeys []string `json:"member_array_keys" validate:"dive,required"`
	// ProfilePathPattern is a regular expression matching person-profile links.
	ProfilePathPattern string `json:"profile_path_pattern" validate:"required"`
	// CardSelectors find founder/team cards in the DOM.
	CardSelectors []string `json:"card_selectors" validate:"dive,required"`
	// SocialExclusions are href fragments that disqualify a social link.
	SocialExclusions []string `json:"social_exclusions" validate:"dive,required"`
	// SiteDomains are the scraped site's own domains and handles.
	SiteDomains []string `json:"site_domains" validate:"dive,required"`
	// WindowExclusions veto a founder decision made from a text window.
	WindowExclusions []string `json:"window_exclusions" validate:"dive,required"`

	MaxAncestorLevels int `json:"max_ancestor_levels" validate:"min=1,max=50"`
	MaxSectionLines   int `json:"max_section_lines" validate:"min=1"`
	MaxContainerLines int `json:"max_container_lines" validate:"min=1"`
	MarkerTopLines    int `json:"marker_top_lines" validate:"min=0"`
	TextWindowRadius  int `json:"text_window_radius" validate:"min=0"`
	MaxJSONDepth      int `json:"max_json_depth" validate:"min=1,max=200"`
	MaxCards          int `json:"max_cards" validate:"min=1"`
}

// DefaultExtractionConfig returns the values the directory scrapers were tuned with.
func DefaultExtractionConfig() *ExtractionConfig {
	return &ExtractionConfig{
		SectionMarker: "Active Founders",
		EndMarkers: []string{
			"latest news", "company launches", "tl;dr", "problem", "solution", "ask",
		},
		StaffDenylist: []string{
			"jared friedman", "brad flora", "gustaf alstromer", "harj taggar",
			"aaron epstein", "david lieb", "paul graham", "jessica livingston",
			"trevor blackwell", "robert morris", "pete koomen",
		},
		StructuralPhrases: []string{
			"the", "re the", "founders", "active founders", "founder directory",
			"find a co-founder", "co-founder matching", "founder matching", "people",
			"back office", "company launches", "latest news", "yc partner", "our team",
			"meet the team", "see original", "why the next", "tl;dr",
		},
		StructuralTokens: []string{
			"founder", "founders", "co-founder", "co-founders", "cofounder", "cofounders",
			"people", "team", "companies", "company", "jobs", "news", "launches",
			"directory", "matching", "partner", "partners", "home", "active",
			"linkedin", "twitter",
		},
		FounderArrayKeys:   []string{"founders", "activeFounders", "active_founders", "people"},
		MemberArrayKeys:    []string{"team", "members", "teamMembers", "team_members"},
		ProfilePathPattern: `/people/[^/?#]+`,
		CardSelectors: []string{
			"[class*='founder']", "[class*='Founder']", "[class*='team-member']", "[class*='person-card']",
		},
		SocialExclusions:  []string{"/company/", "/school/", "/admin/", "/dashboard"},
		SiteDomains:       []string{"ycombinator.com", "ycombinator"},
		WindowExclusions:  []string{"yc partner", "group partner"},
		MaxAncestorLevels: 7,
		MaxSectionLines:   40,
		MaxContainerLines: 150,
		MarkerTopLines:    5,
		TextWindowRadius:  800,
		MaxJSONDepth:      20,
		MaxCards:          20,
	}
}

// LoadExtractionConfig reads a JSON override file on top of the defaults.
// The file is checked against the shipped JSON Schema before decoding.
func LoadExtractionConfig(path string) (*ExtractionConfig, error) {
	cfg := DefaultExtractionConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read extraction config %s: %w", path, err)
	}

	if err := schemas.ValidateDocument("extraction_config", rootschemas.ExtractionConfig, data); err != nil {
		return nil, fmt.Errorf("extraction config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse extraction config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidationError lists the fields of a config struct that failed validation.
type ValidationError struct {
	Fields []string
	Cause  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config error: invalid fields: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs the struct-tag rules.
func (c *ExtractionConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("config error: %w", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Namespace())
	}
	return &ValidationError{Fields: fields, Cause: err}
}
