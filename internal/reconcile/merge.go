// Package reconcile collapses same-person candidates into founder drafts and
// merges drafts into stored records without ever clearing a populated field.
package reconcile

import (
	"sort"
	"strings"

	"github.com/jonathan/founder-scout/internal/types"
)

// Merge collapses candidates that share an identity key into one draft each.
// Candidates are considered in strategy-priority order, so for every field the
// value from the highest-priority strategy that found one wins. Drafts come out
// in order of first appearance. Organization fields are left for the caller.
func Merge(cands []types.PersonCandidate) []types.FounderRecord {
	ordered := make([]types.PersonCandidate, len(cands))
	copy(ordered, cands)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SourceStrategy < ordered[j].SourceStrategy
	})

	index := make(map[string]int)
	var drafts []types.FounderRecord
	for _, c := range ordered {
		key := types.IdentityKey(c.Name)
		if key == "" {
			continue
		}
		i, ok := index[key]
		if !ok {
			index[key] = len(drafts)
			drafts = append(drafts, types.FounderRecord{Name: strings.Join(strings.Fields(c.Name), " ")})
			i = len(drafts) - 1
		}
		fill(&drafts[i], candidateFields(c))
	}
	return drafts
}

func candidateFields(c types.PersonCandidate) map[types.FounderField]string {
	return map[types.FounderField]string{
		types.FieldRole:            c.Role,
		types.FieldPreviousCompany: c.PreviousCompany,
		types.FieldLinkedInURL:     c.LinkedInURL,
		types.FieldTwitterURL:      c.TwitterURL,
		types.FieldProfileURL:      c.ProfileURL,
		types.FieldBio:             c.Bio,
	}
}

func fill(dst *types.FounderRecord, values map[types.FounderField]string) []types.FounderField {
	var changed []types.FounderField
	for _, field := range types.FillableFields {
		cur := dst.Field(field)
		v := strings.TrimSpace(values[field])
		if strings.TrimSpace(*cur) == "" && v != "" {
			*cur = v
			changed = append(changed, field)
		}
	}
	return changed
}
