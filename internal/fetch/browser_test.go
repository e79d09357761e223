package fetch

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser(""))
	assert.True(t, ShouldUseBrowser("   Loading...   "))
	assert.False(t, ShouldUseBrowser(strings.Repeat("a", MinContentLength)))
}

func TestAutoFetcher(t *testing.T) {
	long := "<html><body><p>" + strings.Repeat("Acme builds tools. ", 40) + "</p></body></html>"
	shell := `<html><body><div id="root">Loading</div></body></html>`
	withState := `<html><body><div id="root"></div><script id="__NEXT_DATA__">{"founders":[]}</script></body></html>`
	rendered := `<html><body><h2>Founders</h2><p>Jane Doe</p></body></html>`

	tests := []struct {
		name         string
		httpHTML     string
		browserErr   error
		wantText     string
		wantRendered bool
	}{
		{name: "enough content", httpHTML: long, wantRendered: false},
		{name: "client state present", httpHTML: withState, wantRendered: false},
		{name: "thin shell rendered", httpHTML: shell, wantRendered: true, wantText: "Founders\nJane Doe"},
		{name: "render failure falls back", httpHTML: shell, browserErr: &Error{Message: "browser rendering failed"}, wantText: "Loading"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpF := &scriptedFetcher{results: []scriptedResult{{snap: htmlSnap(t, acmeURL, tt.httpHTML)}}}
			browserResult := scriptedResult{err: tt.browserErr}
			if tt.browserErr == nil {
				browserResult.snap = htmlSnap(t, acmeURL, rendered)
			}
			browserF := &scriptedFetcher{results: []scriptedResult{browserResult}}

			snap, err := (&AutoFetcher{HTTP: httpF, Browser: browserF}).Fetch(context.Background(), acmeURL)
			require.NoError(t, err)
			if tt.wantRendered {
				assert.Equal(t, 1, browserF.Calls())
			}
			if !tt.wantRendered && tt.browserErr == nil {
				assert.Equal(t, 0, browserF.Calls())
			}
			if tt.wantText != "" {
				assert.Equal(t, tt.wantText, snap.VisibleText)
			}
		})
	}
}

func TestAutoFetcher_HTTPErrorReturned(t *testing.T) {
	httpF := &scriptedFetcher{results: []scriptedResult{{err: &Error{URL: acmeURL, Message: "HTTP 404", StatusCode: 404}}}}
	browserF := &scriptedFetcher{results: []scriptedResult{{}}}

	_, err := (&AutoFetcher{HTTP: httpF, Browser: browserF}).Fetch(context.Background(), acmeURL)
	require.Error(t, err)
	assert.Equal(t, 0, browserF.Calls())
}

func TestBrowserFetcher_InvalidURL(t *testing.T) {
	_, err := NewBrowserFetcher(BrowserOptions{}).Fetch(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid URL")
}
