package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/DjordjeVuckovic/newsman/internal/apperr"
	"github.com/DjordjeVuckovic/newsman/internal/domain"
	"github.com/DjordjeVuckovic/newsman/internal/storage"
	"github.com/DjordjeVuckovic/newsman/internal/types/query"
	"github.com/DjordjeVuckovic/newsman/pkg/pagination"
)

// QueryEmbedder turns free text into a query vector.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Service is the read side of the system. It translates user filters into
// store queries and never re-orders what the store returns.
type Service struct {
	store    storage.VectorStore
	embedder QueryEmbedder
	now      func() time.Time
}

type ServiceOption func(*Service)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store storage.VectorStore, embedder QueryEmbedder, opts ...ServiceOption) *Service {
	s := &Service{store: store, embedder: embedder, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search embeds f.Text, which may be empty, and ranks articles by cosine
// similarity to it. Store and embedding failures are logged and produce an
// empty result.
func (s *Service) Search(ctx context.Context, f query.Filter) ([]domain.ScoredArticle, error) {
	page, err := pageOf(f)
	if err != nil {
		return nil, err
	}

	vec, err := s.embedder.EmbedQuery(ctx, f.Text)
	if err != nil {
		slog.Error("Error embedding search query", "error", err)
		return []domain.ScoredArticle{}, nil
	}

	return s.query(ctx, page, storage.QueryRequest{
		Vector:   vec,
		Filter:   storage.FilterFromQuery(f),
		Limit:    page.Window(),
		MinScore: f.MinScore,
	}), nil
}

// Browse lists the articles matching f newest first, unranked. Text and
// MinScore are ignored.
func (s *Service) Browse(ctx context.Context, f query.Filter) ([]domain.ScoredArticle, error) {
	page, err := pageOf(f)
	if err != nil {
		return nil, err
	}

	return s.query(ctx, page, storage.QueryRequest{
		Filter: storage.FilterFromQuery(f),
		Limit:  page.Window(),
	}), nil
}

func (s *Service) query(ctx context.Context, page pagination.OffsetRequest, req storage.QueryRequest) []domain.ScoredArticle {
	hits, err := s.store.Query(ctx, req)
	if err != nil {
		slog.Error("Error querying vector store", "error", err, "collection", s.store.Collection())
		return []domain.ScoredArticle{}
	}
	return pagination.NewOffsetResult(hits, page.Offset, page.Limit).Items
}

func pageOf(f query.Filter) (pagination.OffsetRequest, error) {
	page := pagination.OffsetRequest{Limit: f.Limit, Offset: f.Offset}
	if err := page.Validate(); err != nil {
		return page, apperr.NewValidation(err.Error())
	}
	return page, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Article, error) {
	if id == "" {
		return nil, apperr.NewValidation("article id is required")
	}
	return s.store.Get(ctx, id)
}

// Sources returns the distinct source names, sorted.
func (s *Service) Sources(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	err := s.scan(ctx, func(a domain.Article) {
		seen[a.Source] = struct{}{}
	})
	if err != nil {
		return nil, err
	}
	return sortedKeys(seen), nil
}

// Categories returns the distinct categories across all articles, sorted.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	err := s.scan(ctx, func(a domain.Article) {
		for _, c := range a.Categories {
			seen[c] = struct{}{}
		}
	})
	if err != nil {
		return nil, err
	}
	return sortedKeys(seen), nil
}

type Stats struct {
	TotalArticles int64          `json:"total_articles"`
	ArticlesToday int            `json:"articles_today"`
	Sources       map[string]int `json:"sources"`
	Categories    map[string]int `json:"categories"`
	Timestamp     time.Time      `json:"timestamp"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}

	stats := &Stats{
		TotalArticles: total,
		Sources:       make(map[string]int),
		Categories:    make(map[string]int),
		Timestamp:     now,
	}

	err = s.scan(ctx, func(a domain.Article) {
		if !a.PublishedAt.Before(today) {
			stats.ArticlesToday++
		}
		stats.Sources[a.Source]++
		for _, c := range a.Categories {
			stats.Categories[c]++
		}
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

type Health struct {
	Status     string `json:"status"`
	Collection string `json:"collection"`
	Articles   int64  `json:"articles"`
}

// Health reports "ok" when the store answers, "degraded" otherwise.
func (s *Service) Health(ctx context.Context) Health {
	h := Health{Status: "ok", Collection: s.store.Collection()}
	if !s.store.Healthy(ctx) {
		h.Status = "degraded"
		return h
	}
	count, err := s.store.Count(ctx)
	if err != nil {
		slog.Warn("Error counting articles for health check", "error", err)
		h.Status = "degraded"
		return h
	}
	h.Articles = count
	return h
}

func (s *Service) Healthy(ctx context.Context) bool {
	return s.store.Healthy(ctx)
}

func (s *Service) HealthDetails(ctx context.Context) map[string]any {
	h := s.Health(ctx)
	return map[string]any{
		"name":           h.Collection,
		"exists":         h.Status == "ok",
		"articles_count": h.Articles,
	}
}

// Collections is the health checker of an API serving several collections,
// keyed by the name they are reported under.
type Collections map[string]*Service

// Healthy is false as soon as one collection does not answer.
func (c Collections) Healthy(ctx context.Context) bool {
	for _, svc := range c {
		if !svc.Healthy(ctx) {
			return false
		}
	}
	return true
}

func (c Collections) HealthDetails(ctx context.Context) map[string]any {
	collections := make(map[string]any, len(c))
	for name, svc := range c {
		collections[name] = svc.HealthDetails(ctx)
	}
	return map[string]any{"collections": collections}
}

func (s *Service) scan(ctx context.Context, fn func(domain.Article)) error {
	token := ""
	for {
		page, err := s.store.List(ctx, storage.Filter{}, token, storage.ListPageSize)
		if err != nil {
			return fmt.Errorf("failed to list articles: %w", err)
		}
		for _, a := range page.Articles {
			fn(a)
		}
		if page.Next == "" {
			return nil
		}
		token = page.Next
	}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
