package reconcile

import "github.com/jonathan/founder-scout/internal/types"

// FillOnly merges draft into existing: a field is copied only when it is empty
// on existing and non-empty on draft. Identity, organization and CreatedAt are
// always taken from existing. changed lists the fields that were filled, in
// column order; an empty list means the stored row needs no write.
func FillOnly(existing, draft types.FounderRecord) (merged types.FounderRecord, changed []types.FounderField) {
	merged = existing
	values := make(map[types.FounderField]string, len(types.FillableFields))
	for _, field := range types.FillableFields {
		values[field] = *draft.Field(field)
	}
	changed = fill(&merged, values)
	return merged, changed
}
