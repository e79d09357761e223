package dom

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/PuerkitoBio/purell"
)

// Anchor is a hyperlink with its rendered text and absolute target.
type Anchor struct {
	Text      string
	Href      string
	Selection *goquery.Selection
}

// Anchors collects a[href] under sel, resolving relative targets against base.
// Malformed, javascript: and mailto: links are skipped.
func Anchors(sel *goquery.Selection, base *url.URL) []Anchor {
	if sel == nil {
		return nil
	}
	var anchors []Anchor
	sel.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}
		resolved := ResolveHref(base, href)
		if resolved == "" {
			return
		}
		anchors = append(anchors, Anchor{
			Text:      Text(s),
			Href:      resolved,
			Selection: s,
		})
	})
	return anchors
}

// ResolveHref makes href absolute against base. It returns "" for links that
// cannot be followed.
func ResolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:") {
		return ""
	}
	linkURL, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		linkURL = base.ResolveReference(linkURL)
	}
	linkURL.Fragment = ""
	return linkURL.String()
}

// NormalizeURL canonicalizes a URL for comparison and storage: lowercase scheme
// and host, no fragment, no trailing slash, sorted query. Unparseable input is
// returned trimmed.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	normalized, err := purell.NormalizeURLString(raw,
		purell.FlagsSafe|
			purell.FlagsUsuallySafeGreedy|
			purell.FlagRemoveFragment|
			purell.FlagSortQuery,
	)
	if err != nil {
		return raw
	}
	return normalized
}

// Host returns the lowercase host of raw without a leading "www.".
func Host(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
