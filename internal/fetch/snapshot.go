package fetch

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/founder-scout/internal/dom"
	"github.com/jonathan/founder-scout/internal/types"
)

// nextDataAssign matches client state assigned from an inline script.
var nextDataAssign = regexp.MustCompile(`(?s)window\.__NEXT_DATA__\s*=\s*(\{.*?\})\s*;?\s*</script>`)

// BuildSnapshot parses html into the snapshot handed to extraction.
func BuildSnapshot(pageURL, html string, fetchedAt time.Time) (*types.PageSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &Error{URL: pageURL, Message: "failed to parse HTML", Cause: err}
	}
	return &types.PageSnapshot{
		URL:            pageURL,
		DOM:            doc,
		VisibleText:    dom.DocumentText(doc),
		StructuredData: StructuredData(doc, html),
		HTML:           html,
		FetchedAt:      fetchedAt,
	}, nil
}

// StructuredData finds the embedded client-state blob of a page.
// Sources are tried in order: the __NEXT_DATA__ script tag, an inline
// window.__NEXT_DATA__ assignment, then a data-page attribute. A blob that
// is present but not valid JSON is returned undecoded so extraction can
// report it. Nil means the page carries no client state.
func StructuredData(doc *goquery.Document, html string) any {
	if raw := strings.TrimSpace(doc.Find("script#__NEXT_DATA__").First().Text()); raw != "" {
		return decodeBlob(raw)
	}
	if m := nextDataAssign.FindStringSubmatch(html); m != nil {
		return decodeBlob(m[1])
	}
	if raw, ok := doc.Find("[data-page]").First().Attr("data-page"); ok && strings.TrimSpace(raw) != "" {
		return decodeBlob(raw)
	}
	return nil
}

func decodeBlob(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return json.RawMessage(raw)
	}
	return v
}
