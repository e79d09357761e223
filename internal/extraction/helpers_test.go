package extraction

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/founder-scout/internal/config"
	"github.com/jonathan/founder-scout/internal/dom"
	"github.com/jonathan/founder-scout/internal/types"
)

const testPageURL = "https://www.ycombinator.com/companies/acme"

func testRules(t *testing.T) *Rules {
	t.Helper()
	rules, err := NewRules(config.DefaultExtractionConfig())
	require.NoError(t, err)
	return rules
}

func htmlSnapshot(t *testing.T, html string) *types.PageSnapshot {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return &types.PageSnapshot{
		URL:         testPageURL,
		DOM:         doc,
		VisibleText: dom.DocumentText(doc),
	}
}

func textSnapshot(text string) *types.PageSnapshot {
	return &types.PageSnapshot{URL: testPageURL, VisibleText: text}
}

type nameRole struct {
	Name string
	Role string
}

func namesAndRoles(cands []types.PersonCandidate) []nameRole {
	out := make([]nameRole, 0, len(cands))
	for _, c := range cands {
		out = append(out, nameRole{Name: c.Name, Role: c.Role})
	}
	return out
}

func names(cands []types.PersonCandidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.Name)
	}
	return out
}
