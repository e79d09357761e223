package dom

import "github.com/PuerkitoBio/goquery"

// Ancestors returns up to maxLevels element ancestors of the first node in sel,
// nearest first.
func Ancestors(sel *goquery.Selection, maxLevels int) []*goquery.Selection {
	return AncestorsUntil(sel, maxLevels, nil)
}

// AncestorsUntil is Ancestors stopped before the first ancestor for which stop
// reports true. A nil stop never stops early.
func AncestorsUntil(sel *goquery.Selection, maxLevels int, stop func(*goquery.Selection) bool) []*goquery.Selection {
	if sel == nil || sel.Length() == 0 || maxLevels <= 0 {
		return nil
	}
	out := make([]*goquery.Selection, 0, maxLevels)
	cur := sel.First()
	for i := 0; i < maxLevels; i++ {
		cur = cur.Parent()
		if cur.Length() == 0 {
			break
		}
		if stop != nil && stop(cur) {
			break
		}
		out = append(out, cur)
	}
	return out
}

// Contains reports whether the first node of inner is the first node of outer
// or lies under it.
func Contains(outer, inner *goquery.Selection) bool {
	if outer == nil || inner == nil || outer.Length() == 0 || inner.Length() == 0 {
		return false
	}
	root := outer.Get(0)
	for n := inner.Get(0); n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}
