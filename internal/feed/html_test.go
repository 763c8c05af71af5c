package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain text", "just text", "just text"},
		{"nested tags", "<p>Hello <b>world</b></p>", "Hello world"},
		{"entities", "<p>Tom &amp; Jerry</p>", "Tom & Jerry"},
		{"whitespace collapsed between nodes", "<div>\n  one\n</div>\n<div>two</div>", "one two"},
		{"script dropped", "<p>a</p><script>alert(1)</script><style>p{}</style><p>b</p>", "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripHTML(tt.input))
		})
	}
}

func TestFirstImage(t *testing.T) {
	assert.Equal(t, "https://img/1.png", FirstImage(`<div><img alt="x"><img src="https://img/1.png"></div>`))
	assert.Empty(t, FirstImage("no markup here"))
	assert.Empty(t, FirstImage("<p>no image</p>"))
}

func TestCategorizeByURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected []string
	}{
		{"single keyword", "https://example.com/sports/match", []string{"sports"}},
		{"case insensitive and deduplicated", "https://example.com/Tech/AI/story", []string{"tech"}},
		{"multiple categories", "https://example.com/world/business/x", []string{"world", "business"}},
		{"host is ignored", "https://tech.example.com/story", nil},
		{"invalid url", "://bad", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.expected, CategorizeByURL(tt.url))
		})
	}
}
