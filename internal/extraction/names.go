package extraction

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var execTitle = regexp.MustCompile(`\b(ceo|cto|coo)\b`)

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// looksLikeName is the shape test strategies use while scanning: 2 to 4 words,
// each starting with an uppercase letter.
func looksLikeName(s string) bool {
	words := strings.Fields(s)
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		r, _ := utf8.DecodeRuneInString(w)
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// coarseRole maps a line mentioning "founder" to a role label. ok is false
// when the line does not mention a founder at all.
func coarseRole(line string) (role string, ok bool) {
	lower := strings.ToLower(line)
	if !strings.Contains(lower, "founder") {
		return "", false
	}
	if strings.Contains(lower, "co-founder") || strings.Contains(lower, "cofounder") {
		return "Co-founder", true
	}
	switch execTitle.FindString(lower) {
	case "ceo":
		return "Founder, CEO", true
	case "cto":
		return "Founder, CTO", true
	case "coo":
		return "Founder, COO", true
	}
	return "Founder", true
}

// mentionsLeadership reports a line that names a founder or executive title.
func mentionsLeadership(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "founder") || execTitle.MatchString(lower)
}
