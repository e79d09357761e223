package fetch

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func structuredFrom(t *testing.T, html string) any {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return StructuredData(doc, html)
}

func TestStructuredData_Sources(t *testing.T) {
	tests := []struct {
		name string
		html string
		want any
	}{
		{
			name: "next data script tag",
			html: `<html><body><script id="__NEXT_DATA__" type="application/json">{"props":{"n":1}}</script></body></html>`,
			want: map[string]any{"props": map[string]any{"n": float64(1)}},
		},
		{
			name: "inline assignment",
			html: `<html><body><script>window.__NEXT_DATA__ = {"page":"/acme"};</script></body></html>`,
			want: map[string]any{"page": "/acme"},
		},
		{
			name: "data-page attribute",
			html: `<html><body><div id="app" data-page='{"component":"Company"}'></div></body></html>`,
			want: map[string]any{"component": "Company"},
		},
		{
			name: "no client state",
			html: `<html><body><p>Hello</p></body></html>`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, structuredFrom(t, tt.html))
		})
	}
}

func TestStructuredData_ScriptTagWinsOverAttribute(t *testing.T) {
	html := `<html><body>
		<div data-page='{"source":"attr"}'></div>
		<script id="__NEXT_DATA__">{"source":"script"}</script>
	</body></html>`
	assert.Equal(t, map[string]any{"source": "script"}, structuredFrom(t, html))
}

func TestStructuredData_MalformedKeptRaw(t *testing.T) {
	got := structuredFrom(t, `<html><body><script id="__NEXT_DATA__">{"props":</script></body></html>`)
	raw, ok := got.(json.RawMessage)
	require.True(t, ok, "malformed blob should be passed through undecoded, got %T", got)
	assert.Equal(t, `{"props":`, string(raw))
}

func TestBuildSnapshot(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	html := `<html><head><title>Acme</title></head><body><h2>Founders</h2><p>Jane Doe</p></body></html>`

	snap, err := BuildSnapshot("https://acme.test/", html, at)
	require.NoError(t, err)
	assert.Equal(t, "https://acme.test/", snap.URL)
	assert.Equal(t, at, snap.FetchedAt)
	assert.Equal(t, html, snap.HTML)
	assert.Equal(t, "Founders\nJane Doe", snap.VisibleText)
	assert.Nil(t, snap.StructuredData)
	assert.True(t, snap.HasDOM())
}
