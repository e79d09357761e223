package extraction

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jonathan/founder-scout/internal/dom"
)

// SocialLinks looks for a LinkedIn and a Twitter/X profile belonging to name
// among the links under scope. A link belongs to name when a word of the name
// longer than three letters appears in its text or target. Organization,
// school and admin paths and the site's own accounts are ignored.
func (r *Rules) SocialLinks(scope *goquery.Selection, base *url.URL, name string) (linkedin, twitter string) {
	if scope == nil || scope.Length() == 0 {
		return "", ""
	}
	lowerName := strings.ToLower(collapse(name))
	compact := strings.NewReplacer(" ", "", "-", "", "'", "").Replace(lowerName)

	var words []string
	for _, w := range strings.Fields(lowerName) {
		if len(w) > 3 {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return "", ""
	}

	for _, a := range dom.Anchors(scope, base) {
		href := strings.ToLower(a.Href)
		text := strings.ToLower(a.Text)
		if !mentionsAny(href, text, words) {
			continue
		}
		switch {
		case strings.Contains(href, "linkedin.com/in/"):
			if r.socialExcluded(href) {
				continue
			}
			if linkedin == "" || (strings.Contains(href, compact) && !strings.Contains(strings.ToLower(linkedin), compact)) {
				linkedin = a.Href
			}
		case isTwitterHost(dom.Host(a.Href)):
			if r.ownSite(href) || r.socialExcluded(href) {
				continue
			}
			if twitter == "" {
				twitter = a.Href
			}
		}
	}
	return dom.NormalizeURL(linkedin), dom.NormalizeURL(twitter)
}

// socialForName searches the neighborhood of every element whose own text
// mentions name. Used by strategies that found the name in free text.
func (r *Rules) socialForName(doc *goquery.Document, base *url.URL, name string) (linkedin, twitter string) {
	if doc == nil {
		return "", ""
	}
	founders := r.foundersContainer(doc)
	found := doc.Find("body *").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return containsFold(ownText(s), name)
	})
	for i := range min(found.Length(), 5) {
		scope := r.within(found.Eq(i), founders)
		li, tw := r.SocialLinks(scope, base, name)
		if linkedin == "" {
			linkedin = li
		}
		if twitter == "" {
			twitter = tw
		}
		if linkedin != "" && twitter != "" {
			break
		}
	}
	return linkedin, twitter
}

func (r *Rules) socialExcluded(lowerHref string) bool {
	for _, ex := range r.cfg.SocialExclusions {
		if strings.Contains(lowerHref, strings.ToLower(ex)) {
			return true
		}
	}
	return false
}

func (r *Rules) ownSite(lowerHref string) bool {
	for _, d := range r.cfg.SiteDomains {
		if strings.Contains(lowerHref, strings.ToLower(d)) {
			return true
		}
	}
	return false
}

func isTwitterHost(host string) bool {
	return host == "twitter.com" || host == "x.com" || host == "mobile.twitter.com"
}

func mentionsAny(href, text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(href, w) || strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// ownText is the text of the element's direct text children.
func ownText(s *goquery.Selection) string {
	var sb strings.Builder
	for _, n := range s.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
			}
		}
	}
	return collapse(sb.String())
}
