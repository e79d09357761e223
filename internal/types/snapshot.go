package types

import (
	"time"

	"github.com/PuerkitoBio/goquery"
)

// PageSnapshot is one visit of an organization page as handed to extraction.
// It is built once by the fetcher and treated as read-only afterwards.
type PageSnapshot struct {
	URL string
	// DOM is the parsed document. Nil when only text is available.
	DOM *goquery.Document
	// VisibleText is the rendered text, one visual line per line.
	VisibleText string
	// StructuredData is the decoded client-state blob (e.g. __NEXT_DATA__), or nil.
	StructuredData any
	// HTML is the source the snapshot was built from, kept for the page cache.
	HTML      string
	FetchedAt time.Time
}

// HasDOM reports whether structural queries can be run against the snapshot.
func (s *PageSnapshot) HasDOM() bool {
	return s != nil && s.DOM != nil
}
