package dom

import (
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAncestors_BoundedAndNearestFirst(t *testing.T) {
	doc := parse(t, `<html><body><section id="s"><div id="d"><p id="p"><a id="a">x</a></p></div></section></body></html>`)

	got := Ancestors(doc.Find("#a"), 3)
	require.Len(t, got, 3)
	assert.Equal(t, "p", goquery.NodeName(got[0]))
	assert.Equal(t, "div", goquery.NodeName(got[1]))
	assert.Equal(t, "section", goquery.NodeName(got[2]))
}

func TestAncestorsUntil_StopsBeforeMatch(t *testing.T) {
	doc := parse(t, `<html><body><section id="s"><div id="d"><p id="p"><a id="a">x</a></p></div></section></body></html>`)

	got := AncestorsUntil(doc.Find("#a"), 10, func(s *goquery.Selection) bool {
		return goquery.NodeName(s) == "section"
	})
	require.Len(t, got, 2)
	assert.Equal(t, "p", goquery.NodeName(got[0]))
	assert.Equal(t, "div", goquery.NodeName(got[1]))
}

func TestContains(t *testing.T) {
	doc := parse(t, `<html><body><section id="s"><p id="p"><a id="a">x</a></p></section><div id="other"></div></body></html>`)

	assert.True(t, Contains(doc.Find("#s"), doc.Find("#a")))
	assert.True(t, Contains(doc.Find("#s"), doc.Find("#s")))
	assert.False(t, Contains(doc.Find("#a"), doc.Find("#s")))
	assert.False(t, Contains(doc.Find("#other"), doc.Find("#a")))
	assert.False(t, Contains(doc.Find("#missing"), doc.Find("#a")))
}

func TestAncestors_StopsAtDocumentRoot(t *testing.T) {
	doc := parse(t, `<html><body><a id="a">x</a></body></html>`)

	got := Ancestors(doc.Find("#a"), 50)
	assert.Len(t, got, 2) // body, html
}

func TestAncestors_EmptyInputs(t *testing.T) {
	doc := parse(t, `<html><body></body></html>`)
	assert.Nil(t, Ancestors(doc.Find("#missing"), 5))
	assert.Nil(t, Ancestors(doc.Find("body"), 0))
	assert.Nil(t, Ancestors(nil, 5))
}
