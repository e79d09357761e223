package dedupe

import (
	"sort"
	"strings"

	"github.com/jonathan/founder-scout/internal/dom"
	"github.com/jonathan/founder-scout/internal/types"
)

// MatchKind says which rule put organizations in the same group.
type MatchKind string

const (
	MatchCanonicalURL MatchKind = "canonical_url"
	MatchName         MatchKind = "name"
)

// Group is one set of duplicates and the row chosen to survive.
type Group struct {
	Match   MatchKind                  `json:"match"`
	Key     string                     `json:"key"`
	Keep    types.OrganizationRecord   `json:"keep"`
	Discard []types.OrganizationRecord `json:"discard"`
}

// Plan decides which rows to merge without touching the store. Rows are first
// grouped by normalized canonical URL; the survivors are then grouped by exact
// name. Groups are returned in key order.
func Plan(orgs []types.OrganizationRecord) []Group {
	byURL := groupBy(orgs, func(o types.OrganizationRecord) string {
		return dom.NormalizeURL(o.CanonicalURL)
	})
	groups := resolve(MatchCanonicalURL, byURL)

	discarded := make(map[string]bool)
	for _, g := range groups {
		for _, d := range g.Discard {
			discarded[d.ID.String()] = true
		}
	}
	var survivors []types.OrganizationRecord
	for _, o := range orgs {
		if !discarded[o.ID.String()] {
			survivors = append(survivors, o)
		}
	}

	byName := groupBy(survivors, func(o types.OrganizationRecord) string {
		return strings.TrimSpace(o.Name)
	})
	return append(groups, resolve(MatchName, byName)...)
}

func groupBy(orgs []types.OrganizationRecord, key func(types.OrganizationRecord) string) map[string][]types.OrganizationRecord {
	out := make(map[string][]types.OrganizationRecord)
	for _, o := range orgs {
		if k := key(o); k != "" {
			out[k] = append(out[k], o)
		}
	}
	return out
}

func resolve(match MatchKind, grouped map[string][]types.OrganizationRecord) []Group {
	keys := make([]string, 0, len(grouped))
	for k, members := range grouped {
		if len(members) > 1 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		members := append([]types.OrganizationRecord(nil), grouped[k]...)
		sort.SliceStable(members, func(i, j int) bool { return better(members[i], members[j]) })
		groups = append(groups, Group{
			Match:   match,
			Key:     k,
			Keep:    members[0],
			Discard: members[1:],
		})
	}
	return groups
}
