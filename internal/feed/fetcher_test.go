package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DjordjeVuckovic/newsman/internal/apperr"
	"github.com/DjordjeVuckovic/newsman/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
  <title>Example</title>
  <link>https://example.com</link>
  <item>
    <title>First story</title>
    <link>https://example.com/tech/first</link>
    <description>&lt;p&gt;Hello &lt;b&gt;world&lt;/b&gt;&lt;/p&gt;</description>
    <pubDate>Tue, 05 Mar 2024 10:00:00 GMT</pubDate>
    <dc:creator>Jane Doe</dc:creator>
    <category>AI</category>
    <media:content url="https://cdn.example.com/first.jpg" type="image/jpeg" medium="image"/>
  </item>
  <item>
    <title>Second story</title>
    <link>https://example.com/world/second</link>
    <description>Plain</description>
  </item>
</channel>
</rss>`

func TestFetcher_Fetch(t *testing.T) {
	var userAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	f := NewFetcher()

	entries, err := f.Fetch(context.Background(), domain.FeedSource{Name: "example", URL: srv.URL})

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, DefaultUserAgent, userAgent)

	first := entries[0]
	assert.Equal(t, "First story", first.Title)
	assert.Equal(t, "https://example.com/tech/first", first.Link)
	assert.Equal(t, "<p>Hello <b>world</b></p>", first.Description)
	require.NotNil(t, first.PublishedParsed)
	assert.Equal(t, 2024, first.PublishedParsed.Year())
	assert.Equal(t, "Jane Doe", first.Author)
	assert.Equal(t, []string{"AI"}, first.Tags)
	require.NotEmpty(t, first.Media)
	assert.Equal(t, "https://cdn.example.com/first.jpg", first.Media[0].URL)
	assert.True(t, first.Media[0].IsImage())

	assert.Nil(t, entries[1].PublishedParsed)
}

func TestFetcher_FetchErrors(t *testing.T) {
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer notFound.Close()

	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("this is not a feed"))
	}))
	defer garbage.Close()

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	tests := []struct {
		name   string
		url    string
		kind   apperr.FetchKind
		status int
	}{
		{"status", notFound.URL, apperr.FetchStatus, http.StatusNotFound},
		{"parse", garbage.URL, apperr.FetchParse, 0},
		{"network", closedURL, apperr.FetchNetwork, 0},
	}

	f := NewFetcher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := f.Fetch(context.Background(), domain.FeedSource{Name: "broken", URL: tt.url})

			require.Error(t, err)
			assert.Nil(t, entries)

			var fe *apperr.FetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.kind, fe.Kind)
			assert.Equal(t, tt.status, fe.StatusCode)
			assert.Equal(t, "broken", fe.Source)
		})
	}
}
