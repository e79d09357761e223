package pipeline

import (
	"fmt"

	"github.com/google/uuid"
)

// PersistenceError is a failed store operation for one organization. The
// organization is not marked extracted and stays eligible for the next run.
type PersistenceError struct {
	OrganizationID uuid.UUID
	Operation      string
	Cause          error
}

func (e *PersistenceError) Error() string {
	if e.OrganizationID == uuid.Nil {
		return fmt.Sprintf("persistence error: %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("persistence error for organization %s: %s: %v", e.OrganizationID, e.Operation, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}
