package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

func newTestNormalizer(opts ...NormalizerOption) *Normalizer {
	return NewNormalizer(append([]NormalizerOption{WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

func ptr(t time.Time) *time.Time { return &t }

func TestNormalizer_RejectsIncompleteEntries(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name  string
		entry Entry
	}{
		{"missing title", Entry{Link: "https://example.com/a"}},
		{"blank title", Entry{Title: "   ", Link: "https://example.com/a"}},
		{"missing link", Entry{Title: "Headline"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			article, err := n.Normalize(tt.entry, "bbc")

			assert.ErrorIs(t, err, ErrIncompleteEntry)
			assert.Nil(t, article)
		})
	}
}

func TestNormalizer_ContentPriority(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name     string
		entry    Entry
		expected string
	}{
		{"content wins", Entry{Content: "<p>body</p>", Description: "desc", Summary: "sum"}, "body"},
		{"description next", Entry{Description: "desc", Summary: "sum"}, "desc"},
		{"summary last", Entry{Summary: "<b>sum</b>"}, "sum"},
		{"nothing", Entry{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.entry.Title = "Headline"
			tt.entry.Link = "https://example.com/a"

			article, err := n.Normalize(tt.entry, "bbc")

			require.NoError(t, err)
			assert.Equal(t, tt.expected, article.Content)
		})
	}
}

func TestNormalizer_KeepsHTMLWhenStrippingDisabled(t *testing.T) {
	n := newTestNormalizer(WithStripHTML(false))

	article, err := n.Normalize(Entry{Title: "T", Link: "https://example.com/a", Content: "<p>body</p>"}, "bbc")

	require.NoError(t, err)
	assert.Equal(t, "<p>body</p>", article.Content)
}

func TestNormalizer_SummaryTruncation(t *testing.T) {
	n := newTestNormalizer()

	exact := strings.Repeat("a", 200)
	long := strings.Repeat("b", 201)

	article, err := n.Normalize(Entry{Title: "T", Link: "https://example.com/a", Content: exact}, "bbc")
	require.NoError(t, err)
	assert.Equal(t, exact, article.Summary)

	article, err = n.Normalize(Entry{Title: "T", Link: "https://example.com/a", Content: long}, "bbc")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("b", 200)+"...", article.Summary)
	assert.Equal(t, long, article.Content)
}

func TestNormalizer_SummaryPrefersEntrySummary(t *testing.T) {
	n := newTestNormalizer()

	article, err := n.Normalize(Entry{
		Title:   "T",
		Link:    "https://example.com/a",
		Content: "full body",
		Summary: "<i>short</i>",
	}, "bbc")

	require.NoError(t, err)
	assert.Equal(t, "short", article.Summary)
	assert.Equal(t, "full body", article.Content)
}

func TestNormalizer_PublishedPriority(t *testing.T) {
	n := newTestNormalizer()
	published := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	updated := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		entry    Entry
		expected time.Time
	}{
		{"parsed published", Entry{PublishedParsed: ptr(published), UpdatedParsed: ptr(updated)}, published},
		{"parsed updated", Entry{UpdatedParsed: ptr(updated), Published: "Mon, 04 Mar 2024 08:00:00 GMT"}, updated},
		{"free text published", Entry{Published: "Mon, 04 Mar 2024 08:00:00 +0000"}, time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)},
		{"unparseable published falls through to updated", Entry{Published: "yesterday-ish", Updated: "2024-03-03T08:00:00Z"}, time.Date(2024, 3, 3, 8, 0, 0, 0, time.UTC)},
		{"nothing usable", Entry{Published: "soon", Updated: "later"}, fixedNow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.entry.Title = "Headline"
			tt.entry.Link = "https://example.com/a"

			article, err := n.Normalize(tt.entry, "bbc")

			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(article.PublishedAt), "got %s", article.PublishedAt)
			assert.Equal(t, time.UTC, article.PublishedAt.Location())
		})
	}
}

func TestNormalizer_ConvertsPublishedToUTC(t *testing.T) {
	n := newTestNormalizer()
	local := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))

	article, err := n.Normalize(Entry{Title: "T", Link: "https://example.com/a", PublishedParsed: &local}, "bbc")

	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), article.PublishedAt)
}

func TestNormalizer_Categories(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name     string
		entry    Entry
		expected []string
	}{
		{"tags first", Entry{Link: "https://example.com/tech/a", Tags: []string{"AI", "AI", "Chips"}, Categories: []string{"ignored"}}, []string{"AI", "Chips"}},
		{"categories next", Entry{Link: "https://example.com/tech/a", Categories: []string{"Markets"}}, []string{"Markets"}},
		{"url keywords last", Entry{Link: "https://example.com/world/business/a"}, []string{"world", "business"}},
		{"no match", Entry{Link: "https://example.com/a"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.entry.Title = "Headline"

			article, err := n.Normalize(tt.entry, "bbc")

			require.NoError(t, err)
			assert.ElementsMatch(t, tt.expected, article.Categories)
		})
	}
}

func TestNormalizer_Image(t *testing.T) {
	n := newTestNormalizer()

	t.Run("media content flagged as image", func(t *testing.T) {
		article, err := n.Normalize(Entry{
			Title:   "T",
			Link:    "https://example.com/a",
			Content: `<img src="https://img.example.com/inline.jpg">`,
			Media: []Media{
				{URL: "https://cdn.example.com/clip.mp4", Type: "video/mp4"},
				{URL: "https://cdn.example.com/lead.jpg", Medium: "image"},
			},
		}, "bbc")

		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/lead.jpg", article.ImageURL)
	})

	t.Run("first img in raw content", func(t *testing.T) {
		article, err := n.Normalize(Entry{
			Title:   "T",
			Link:    "https://example.com/a",
			Content: `<p>text</p><img src="https://img.example.com/1.jpg"><img src="https://img.example.com/2.jpg">`,
		}, "bbc")

		require.NoError(t, err)
		assert.Equal(t, "https://img.example.com/1.jpg", article.ImageURL)
		assert.Equal(t, "text", article.Content)
	})

	t.Run("none", func(t *testing.T) {
		article, err := n.Normalize(Entry{Title: "T", Link: "https://example.com/a", Content: "plain"}, "bbc")

		require.NoError(t, err)
		assert.Empty(t, article.ImageURL)
	})
}

func TestNormalizer_FieldsAndIdentity(t *testing.T) {
	n := newTestNormalizer()
	published := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	article, err := n.Normalize(Entry{
		Title:           "  Headline  ",
		Link:            "https://example.com/news/a?ref=rss",
		Author:          "Jane Doe",
		PublishedParsed: &published,
	}, "reuters")

	require.NoError(t, err)
	assert.Equal(t, "Headline", article.Title)
	assert.Equal(t, "https://example.com/news/a?ref=rss", article.URL)
	assert.Equal(t, "reuters", article.Source)
	assert.Equal(t, "Jane Doe", article.Author)
	assert.Equal(t, ArticleID("https://example.com/news/a?ref=rss", "Headline", published), article.ID)
}

func TestNormalizer_NormalizeAllSkipsBadEntries(t *testing.T) {
	n := newTestNormalizer()

	entries := []Entry{
		{Title: "One", Link: "https://example.com/1"},
		{Title: "", Link: "https://example.com/2"},
		{Title: "Three", Link: "https://example.com/3"},
	}

	articles := n.NormalizeAll(entries, "bbc")

	require.Len(t, articles, 2)
	assert.Equal(t, "One", articles[0].Title)
	assert.Equal(t, "Three", articles[1].Title)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "", Truncate("", 200))
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab...", Truncate("abc", 2))
	assert.Equal(t, "žš...", Truncate("žšđ", 2))
}
