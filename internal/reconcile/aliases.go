package reconcile

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/jonathan/founder-scout/internal/types"
)

// AliasPair is two distinct names similar enough to possibly be one person.
type AliasPair struct {
	Name       string  `json:"name"`
	Other      string  `json:"other"`
	Similarity float64 `json:"similarity"`
}

// FlagAliases compares each new name against the other new names and the
// names already stored for the organization. Pairs at or above threshold are
// reported for review. Identity stays exact: nothing here merges records.
func FlagAliases(newNames, known []string, threshold float64) []AliasPair {
	if threshold <= 0 {
		return nil
	}
	var pairs []AliasPair
	seen := make(map[[2]string]bool)
	check := func(a, b string) {
		ka, kb := types.IdentityKey(a), types.IdentityKey(b)
		if ka == "" || kb == "" || ka == kb {
			return
		}
		pk := [2]string{ka, kb}
		if kb < ka {
			pk = [2]string{kb, ka}
		}
		if seen[pk] {
			return
		}
		seen[pk] = true
		if sim := matchr.JaroWinkler(ka, kb, false); sim >= threshold {
			pairs = append(pairs, AliasPair{Name: a, Other: b, Similarity: sim})
		}
	}

	for i, a := range newNames {
		for _, b := range newNames[i+1:] {
			check(a, b)
		}
		for _, b := range known {
			check(a, b)
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Similarity > pairs[j].Similarity
	})
	return pairs
}

// Names returns the trimmed names of drafts, for alias checks and logging.
func Names(drafts []types.FounderRecord) []string {
	out := make([]string, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, strings.TrimSpace(d.Name))
	}
	return out
}
