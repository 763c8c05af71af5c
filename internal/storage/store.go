package storage

import (
	"context"

	"github.com/DjordjeVuckovic/newsman/internal/domain"
)

// Record is an article together with its embedding.
type Record struct {
	Article domain.Article
	Vector  []float32
}

// QueryRequest asks the store for the records closest to Vector that match
// Filter. A nil Vector matches everything; results then come back newest
// first with a zero score and MinScore is ignored.
type QueryRequest struct {
	Vector   []float32
	Filter   Filter
	Limit    int
	MinScore *float64
}

func (r QueryRequest) HasVector() bool {
	return len(r.Vector) > 0
}

// Page is one slice of a full listing. Next is empty on the last page.
type Page struct {
	Articles []domain.Article
	Next     string
}

// VectorStore persists articles with their embeddings and searches them by
// cosine similarity.
type VectorStore interface {
	// EnsureCollection creates the collection when it does not exist yet.
	EnsureCollection(ctx context.Context) error
	// Upsert inserts or overwrites records keyed by article ID.
	Upsert(ctx context.Context, records []Record) error
	Query(ctx context.Context, req QueryRequest) ([]domain.ScoredArticle, error)
	// List pages through every article matching filter, newest first.
	List(ctx context.Context, filter Filter, pageToken string, limit int) (*Page, error)
	// Get returns apperr.ErrNotFound for an unknown ID.
	Get(ctx context.Context, id string) (*domain.Article, error)
	// ExistingIDs returns the subset of ids that are already stored.
	ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
	Count(ctx context.Context) (int64, error)
	Collection() string
	Healthy(ctx context.Context) bool
	Close()
}

type Type string

const (
	ES    Type = "es"
	PG    Type = "pg"
	InMem Type = "in_mem"
)

type StorerError string

const (
	ErrUnsupportedStorer StorerError = "unsupported storage type: %s"
)

func (e StorerError) Error() string {
	return string(e)
}

const (
	DefaultCollection        = "news_articles"
	DefaultCompanyCollection = "company_news_collection"
	DefaultVectorSize        = 768
	ListPageSize             = 100
)
