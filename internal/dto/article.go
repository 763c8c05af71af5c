package dto

import (
	"time"

	"github.com/DjordjeVuckovic/newsman/internal/domain"
)

type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url" swaggertype:"string" format:"string"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_date"`
	Author      string    `json:"author,omitempty"`
	Categories  []string  `json:"categories"`
	ImageURL    string    `json:"image_url,omitempty"`
}

type ArticleSearchResult struct {
	Article
	Score float64 `json:"score"` // cosine similarity, 0 for unranked listings
}

func ArticleFromDomain(a domain.Article) Article {
	categories := a.Categories
	if categories == nil {
		categories = []string{}
	}
	return Article{
		ID:          a.ID,
		Title:       a.Title,
		Content:     a.Content,
		Summary:     a.Summary,
		URL:         a.URL,
		Source:      a.Source,
		PublishedAt: a.PublishedAt.UTC(),
		Author:      a.Author,
		Categories:  categories,
		ImageURL:    a.ImageURL,
	}
}

func SearchResultsFromDomain(hits []domain.ScoredArticle) []ArticleSearchResult {
	out := make([]ArticleSearchResult, len(hits))
	for i, h := range hits {
		out[i] = ArticleSearchResult{Article: ArticleFromDomain(h.Article), Score: h.Score}
	}
	return out
}

// CompanyArticleRequest is the body of POST /api/company/add.
type CompanyArticleRequest struct {
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Summary       string   `json:"summary"`
	Content       string   `json:"content,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	Source        string   `json:"source,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
}
