package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrganizationRecord identifies a scraped company. The pipeline only needs the ID,
// the display name and the canonical URL; the rest feeds the dedup score.
type OrganizationRecord struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Batch           string     `json:"batch,omitempty"`
	Description     string     `json:"description,omitempty"`
	Website         string     `json:"website,omitempty"`
	Location        string     `json:"location,omitempty"`
	Industry        string     `json:"industry,omitempty"`
	IsHiring        bool       `json:"is_hiring"`
	CanonicalURL    string     `json:"canonical_url,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	LastExtractedAt *time.Time `json:"last_extracted_at,omitempty"`
}

// DisplayName is the first line of the stored name. Directory listings often
// store "Name\nTagline" in the name column.
func (o *OrganizationRecord) DisplayName() string {
	name := o.Name
	if idx := strings.IndexByte(name, '\n'); idx >= 0 {
		name = name[:idx]
	}
	return strings.TrimSpace(name)
}
