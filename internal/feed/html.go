package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// StripHTML returns the text nodes of s, each trimmed, joined by single spaces.
func StripHTML(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}

	var parts []string
	for _, n := range doc.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			*parts = append(*parts, text)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// FirstImage returns the src of the first <img> in s, or "".
func FirstImage(s string) string {
	if !strings.Contains(s, "<") {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return ""
	}

	src, _ := doc.Find("img[src]").First().Attr("src")
	return src
}
