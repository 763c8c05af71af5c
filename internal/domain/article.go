package domain

import "time"

// Article is a normalized feed entry as it is stored in the vector store.
// Articles are immutable once created; re-ingesting the same ID overwrites
// the stored record instead of creating a second one.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_date"`
	Author      string    `json:"author,omitempty"`
	Categories  []string  `json:"categories"`
	ImageURL    string    `json:"image_url,omitempty"`
}

// ScoredArticle is an Article returned from a similarity query.
type ScoredArticle struct {
	Article
	Score float64 `json:"score"`
}

// HasCategory reports whether the article is tagged with category.
func (a Article) HasCategory(category string) bool {
	for _, c := range a.Categories {
		if c == category {
			return true
		}
	}
	return false
}
