// Package company publishes articles written in-house into their own
// collection, next to the ingested feeds.
package company

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/newsman/internal/apperr"
	"github.com/DjordjeVuckovic/newsman/internal/domain"
	"github.com/DjordjeVuckovic/newsman/internal/feed"
	"github.com/DjordjeVuckovic/newsman/internal/storage"
	"github.com/DjordjeVuckovic/newsman/internal/types/query"
)

const (
	DefaultSource   = "company"
	DefaultCategory = "company"
)

type ArticleEmbedder interface {
	EmbedArticle(ctx context.Context, ar domain.Article) ([]float32, error)
}

// Submission is an article posted by a user. Title, URL and Summary are
// required; everything else has a default.
type Submission struct {
	Title         string
	URL           string
	Summary       string
	Content       string
	PublishedDate string
	Source        string
	Categories    []string
	ImageURL      string
}

type Publisher struct {
	store    storage.VectorStore
	embedder ArticleEmbedder
	now      func() time.Time
}

type PublisherOption func(*Publisher)

func WithClock(now func() time.Time) PublisherOption {
	return func(p *Publisher) {
		p.now = now
	}
}

func NewPublisher(store storage.VectorStore, embedder ArticleEmbedder, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store, embedder: embedder, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Add validates s, fills in its defaults, embeds it and writes it to the
// company collection. Posting the same article twice overwrites it.
func (p *Publisher) Add(ctx context.Context, s Submission) (*domain.Article, error) {
	article, err := p.normalize(s)
	if err != nil {
		return nil, err
	}

	vec, err := p.embedder.EmbedArticle(ctx, article)
	if err != nil {
		return nil, fmt.Errorf("failed to embed company article: %w", err)
	}

	if err := p.store.Upsert(ctx, []storage.Record{{Article: article, Vector: vec}}); err != nil {
		return nil, fmt.Errorf("failed to store company article: %w", err)
	}

	slog.Info("Company article added", "id", article.ID, "collection", p.store.Collection())
	return &article, nil
}

func (p *Publisher) normalize(s Submission) (domain.Article, error) {
	title := strings.TrimSpace(s.Title)
	url := strings.TrimSpace(s.URL)
	summary := strings.TrimSpace(s.Summary)
	if title == "" || url == "" || summary == "" {
		return domain.Article{}, apperr.NewValidation("title, url and summary are required")
	}

	published := p.now().UTC()
	if s.PublishedDate != "" {
		t, err := query.ParseDate(s.PublishedDate)
		if err != nil {
			return domain.Article{}, apperr.NewValidationWrap("published_date must be an ISO date", err)
		}
		published = t
	}

	content := strings.TrimSpace(s.Content)
	if content == "" {
		content = summary
	}
	source := strings.TrimSpace(s.Source)
	if source == "" {
		source = DefaultSource
	}
	categories := nonEmpty(s.Categories)
	if len(categories) == 0 {
		categories = []string{DefaultCategory}
	}

	return domain.Article{
		ID:          feed.ArticleID(url, title, published),
		Title:       title,
		Content:     content,
		Summary:     summary,
		URL:         url,
		Source:      source,
		PublishedAt: published,
		Categories:  categories,
		ImageURL:    strings.TrimSpace(s.ImageURL),
	}, nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
