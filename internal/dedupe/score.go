// Package dedupe collapses duplicate organization rows: same canonical URL
// first, then same name, keeping the most complete row of each group.
package dedupe

import (
	"strings"

	"github.com/jonathan/founder-scout/internal/types"
)

const (
	canonicalURLBonus = 10
	batchBonus        = 5
)

// Score rates how complete an organization row is: one point per populated
// field plus bonuses for a canonical URL and a batch label.
func Score(org types.OrganizationRecord) int {
	score := 0
	for _, v := range []string{
		org.Name, org.Batch, org.Description, org.Website,
		org.Location, org.Industry, org.CanonicalURL,
	} {
		if strings.TrimSpace(v) != "" {
			score++
		}
	}
	if strings.TrimSpace(org.CanonicalURL) != "" {
		score += canonicalURLBonus
	}
	if strings.TrimSpace(org.Batch) != "" {
		score += batchBonus
	}
	return score
}

// better reports whether a should be kept over b: higher score, then newer
// creation time, then the lower ID so the choice is deterministic.
func better(a, b types.OrganizationRecord) bool {
	sa, sb := Score(a), Score(b)
	if sa != sb {
		return sa > sb
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}
