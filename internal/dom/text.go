// Package dom provides the structural helpers shared by snapshot building and
// extraction: line-aware text rendering, bounded ancestor walks and link collection.
package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// blockElements break the rendered text onto a new line, the way a browser lays them out.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "body": true,
	"dd": true, "div": true, "dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hr": true, "html": true, "li": true,
	"main": true, "nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "tbody": true, "td": true, "th": true, "thead": true, "tr": true, "ul": true,
}

var skippedElements = map[string]bool{
	"head": true, "script": true, "style": true, "noscript": true, "template": true, "svg": true,
}

// Lines renders the selection as visible lines: whitespace collapsed, blank lines dropped.
func Lines(sel *goquery.Selection) []string {
	if sel == nil {
		return nil
	}
	var sb strings.Builder
	for _, n := range sel.Nodes {
		render(n, &sb)
		sb.WriteByte('\n')
	}
	return splitLines(sb.String())
}

// Text is Lines joined with newlines.
func Text(sel *goquery.Selection) string {
	return strings.Join(Lines(sel), "\n")
}

// DocumentText renders the whole document body.
func DocumentText(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	body := doc.Find("body")
	if body.Length() == 0 {
		return Text(doc.Selection)
	}
	return Text(body)
}

func render(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		if skippedElements[n.Data] {
			return
		}
		if n.Data == "br" {
			sb.WriteByte('\n')
			return
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		sb.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		render(c, sb)
	}
	if block {
		sb.WriteByte('\n')
	}
}

func splitLines(s string) []string {
	raw := strings.Split(s, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// SplitLines normalizes free text the same way rendered DOM text is normalized.
func SplitLines(s string) []string {
	return splitLines(s)
}
