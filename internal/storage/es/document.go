package es

import (
	"time"

	"github.com/DjordjeVuckovic/newsman/internal/domain"
	"github.com/DjordjeVuckovic/newsman/internal/storage"
)

// ArticleDocument is the stored shape of an article and its embedding.
type ArticleDocument struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	Author      string    `json:"author,omitempty"`
	Categories  []string  `json:"categories"`
	ImageURL    string    `json:"image_url,omitempty"`
	Embedding   []float32 `json:"embedding,omitempty"`
	IndexedAt   time.Time `json:"indexed_at"`
}

type IndexBuilder struct {
	vectorSize int
}

func NewIndexBuilder(vectorSize int) *IndexBuilder {
	return &IndexBuilder{vectorSize: vectorSize}
}

func (b *IndexBuilder) mapToESDocument(r storage.Record) ArticleDocument {
	a := r.Article
	categories := a.Categories
	if categories == nil {
		categories = []string{}
	}
	return ArticleDocument{
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
		Embedding:   r.Vector,
		IndexedAt:   time.Now().UTC(),
	}
}

func (d ArticleDocument) toArticle() domain.Article {
	categories := d.Categories
	if categories == nil {
		categories = []string{}
	}
	return domain.Article{
		ID:          d.ID,
		Title:       d.Title,
		Content:     d.Content,
		Summary:     d.Summary,
		URL:         d.URL,
		Source:      d.Source,
		PublishedAt: d.PublishedAt.UTC(),
		Author:      d.Author,
		Categories:  categories,
		ImageURL:    d.ImageURL,
	}
}

// buildIndexBody returns the create-index body. The embedding is a
// dense_vector indexed for cosine similarity.
func (b *IndexBuilder) buildIndexBody() map[string]any {
	keyword := map[string]any{"type": "keyword"}
	text := map[string]any{"type": "text"}

	return map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"id":           keyword,
				"title":        text,
				"content":      text,
				"summary":      text,
				"url":          keyword,
				"source":       keyword,
				"published_at": map[string]any{"type": "date"},
				"author":       keyword,
				"categories":   keyword,
				"image_url":    map[string]any{"type": "keyword", "index": false},
				"indexed_at":   map[string]any{"type": "date"},
				"embedding": map[string]any{
					"type":       "dense_vector",
					"dims":       b.vectorSize,
					"index":      true,
					"similarity": "cosine",
				},
			},
		},
	}
}
