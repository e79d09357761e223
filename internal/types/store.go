package types

import (
	"time"

	"github.com/google/uuid"
)

// PendingFilter narrows the organizations selected for an extraction run.
type PendingFilter struct {
	// Limit caps the number of organizations; 0 means no limit.
	Limit int
	// StaleAfter re-selects organizations extracted longer ago than this; 0 disables.
	StaleAfter time.Duration
}

// UpsertAction is what a founder upsert did to the stored row.
type UpsertAction string

const (
	UpsertInserted  UpsertAction = "inserted"
	UpsertUpdated   UpsertAction = "updated"
	UpsertUnchanged UpsertAction = "unchanged"
)

// UpsertOutcome reports the result of a fill-only founder upsert.
type UpsertOutcome struct {
	FounderID uuid.UUID      `json:"founder_id"`
	Action    UpsertAction   `json:"action"`
	Changed   []FounderField `json:"changed,omitempty"`
}
