package extraction

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/founder-scout/internal/dom"
)

// foundersContainer picks the smallest element around a marker heading that
// has the marker near its top and a name-shaped line after it, within the line
// bound. Without the bound the whole page would qualify. Nil when the page has
// no such section.
func (r *Rules) foundersContainer(doc *goquery.Document) *goquery.Selection {
	if doc == nil {
		return nil
	}
	headings := doc.Find("body *").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return strings.Contains(strings.ToLower(ownText(sel)), r.marker)
	})

	var found *goquery.Selection
	headings.EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		candidates := append([]*goquery.Selection{heading}, dom.Ancestors(heading, r.cfg.MaxAncestorLevels)...)
		for _, c := range candidates {
			lines := dom.Lines(c)
			if len(lines) > r.cfg.MaxContainerLines {
				break
			}
			idx := r.markerLine(lines)
			if idx < 0 || idx > r.cfg.MarkerTopLines || !r.hasNameAfter(lines, idx) {
				continue
			}
			found = c
			return false
		}
		return true
	})
	return found
}

func (r *Rules) markerLine(lines []string) int {
	for i, line := range lines {
		if strings.Contains(strings.ToLower(line), r.marker) {
			return i
		}
	}
	return -1
}

func (r *Rules) hasNameAfter(lines []string, marker int) bool {
	end := min(len(lines), marker+1+r.cfg.MaxSectionLines)
	for _, line := range lines[marker+1 : end] {
		if r.isEndMarker(line) {
			return false
		}
		if looksLikeName(line) && !containsFold(line, "founder") {
			return true
		}
	}
	return false
}

// scope returns the ancestors of sel, nearest first, that still describe sel's
// own region of the page. The walk is bounded by MaxAncestorLevels, stops
// before an ancestor rendering more than MaxContainerLines lines, never widens
// past the founders container sel sits in, and never reaches into that
// container from a sibling branch.
func (r *Rules) scope(sel, founders *goquery.Selection) []*goquery.Selection {
	inside := founders != nil && dom.Contains(founders, sel)
	reached := false
	return dom.AncestorsUntil(sel, r.cfg.MaxAncestorLevels, func(anc *goquery.Selection) bool {
		if reached {
			return true
		}
		if founders != nil {
			if inside && anc.Get(0) == founders.Get(0) {
				reached = true
				return false
			}
			if !inside && dom.Contains(anc, founders) {
				return true
			}
		}
		return len(dom.Lines(anc)) > r.cfg.MaxContainerLines
	})
}

// within is the outermost element of sel's scope, or sel itself.
func (r *Rules) within(sel, founders *goquery.Selection) *goquery.Selection {
	ancestors := r.scope(sel, founders)
	if len(ancestors) == 0 {
		return sel
	}
	return ancestors[len(ancestors)-1]
}
