package feed

import (
	"net/url"
	"strings"
)

var categoryKeywords = map[string][]string{
	"tech":          {"tech", "technology", "digital", "gadgets", "computers", "software", "ai"},
	"business":      {"business", "finance", "economy", "markets", "money", "investing"},
	"politics":      {"politics", "government", "election", "policy", "congress"},
	"health":        {"health", "medical", "medicine", "wellness", "covid", "disease"},
	"science":       {"science", "research", "space", "environment", "climate"},
	"sports":        {"sports", "football", "soccer", "basketball", "baseball", "nfl", "nba", "mlb"},
	"entertainment": {"entertainment", "movies", "tv", "music", "celebrity", "hollywood"},
	"world":         {"world", "international", "global", "europe", "asia", "africa"},
}

var keywordIndex = buildKeywordIndex()

func buildKeywordIndex() map[string]string {
	idx := make(map[string]string)
	for category, keywords := range categoryKeywords {
		for _, kw := range keywords {
			idx[kw] = category
		}
	}
	return idx
}

// CategorizeByURL maps lower-cased path segments of rawURL onto the fixed
// category table. The result has no duplicates and no particular order.
func CategorizeByURL(rawURL string) []string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var categories []string
	for _, part := range strings.Split(strings.ToLower(u.Path), "/") {
		if part == "" {
			continue
		}
		if category, ok := keywordIndex[part]; ok && !seen[category] {
			seen[category] = true
			categories = append(categories, category)
		}
	}
	return categories
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
