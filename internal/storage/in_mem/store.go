package in_mem

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/DjordjeVuckovic/newsman/internal/apperr"
	"github.com/DjordjeVuckovic/newsman/internal/domain"
	"github.com/DjordjeVuckovic/newsman/internal/dto"
	"github.com/DjordjeVuckovic/newsman/internal/storage"
	"github.com/DjordjeVuckovic/newsman/pkg/utils"
)

// Store is a brute-force cosine vector store kept in process memory.
type Store struct {
	storageLock sync.RWMutex
	storage     map[string]storage.Record
	collection  string
	vectorSize  int
}

func NewStore(collection string, vectorSize int) *Store {
	return &Store{
		storage:    make(map[string]storage.Record),
		collection: collection,
		vectorSize: vectorSize,
	}
}

func (s *Store) EnsureCollection(_ context.Context) error {
	return nil
}

func (s *Store) Upsert(_ context.Context, records []storage.Record) error {
	for _, r := range records {
		if r.Article.ID == "" {
			return fmt.Errorf("record without article ID")
		}
		if s.vectorSize > 0 && len(r.Vector) != s.vectorSize {
			return fmt.Errorf("vector for %s has %d dimensions, want %d", r.Article.ID, len(r.Vector), s.vectorSize)
		}
	}

	s.storageLock.Lock()
	defer s.storageLock.Unlock()

	for _, r := range records {
		s.storage[r.Article.ID] = r
	}
	slog.Debug("Upserted records into in-memory store", "count", len(records), "total", len(s.storage))

	return nil
}

func (s *Store) Query(_ context.Context, req storage.QueryRequest) ([]domain.ScoredArticle, error) {
	s.storageLock.RLock()
	defer s.storageLock.RUnlock()

	hits := make([]domain.ScoredArticle, 0)
	for _, r := range s.storage {
		if !req.Filter.Matches(r.Article) {
			continue
		}
		if !req.HasVector() {
			hits = append(hits, domain.ScoredArticle{Article: r.Article})
			continue
		}
		score := utils.CosineSimilarity(req.Vector, r.Vector)
		if req.MinScore != nil && score < *req.MinScore {
			continue
		}
		hits = append(hits, domain.ScoredArticle{Article: r.Article, Score: utils.RoundDecimal(score, domain.ScoreDecimalPlaces)})
	}

	if req.HasVector() {
		sort.SliceStable(hits, func(i, j int) bool {
			if hits[i].Score != hits[j].Score {
				return hits[i].Score > hits[j].Score
			}
			return hits[i].ID < hits[j].ID
		})
	} else {
		sort.SliceStable(hits, func(i, j int) bool {
			return newerFirst(hits[i].Article, hits[j].Article)
		})
	}

	if req.Limit > 0 && len(hits) > req.Limit {
		hits = hits[:req.Limit]
	}
	return hits, nil
}

func (s *Store) List(_ context.Context, filter storage.Filter, pageToken string, limit int) (*storage.Page, error) {
	cursor, err := dto.DecodeCursor(pageToken)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = storage.ListPageSize
	}

	s.storageLock.RLock()
	articles := make([]domain.Article, 0, len(s.storage))
	for _, r := range s.storage {
		if filter.Matches(r.Article) && cursor.After(r.Article.PublishedAt, r.Article.ID) {
			articles = append(articles, r.Article)
		}
	}
	s.storageLock.RUnlock()

	sort.Slice(articles, func(i, j int) bool {
		return newerFirst(articles[i], articles[j])
	})

	page := &storage.Page{}
	if len(articles) > limit {
		last := articles[limit-1]
		page.Next, err = dto.EncodeCursor(last.PublishedAt, last.ID)
		if err != nil {
			return nil, err
		}
		articles = articles[:limit]
	}
	page.Articles = articles
	return page, nil
}

func (s *Store) Get(_ context.Context, id string) (*domain.Article, error) {
	s.storageLock.RLock()
	defer s.storageLock.RUnlock()

	r, ok := s.storage[id]
	if !ok {
		return nil, fmt.Errorf("article %s: %w", id, apperr.ErrNotFound)
	}
	article := r.Article
	return &article, nil
}

func (s *Store) ExistingIDs(_ context.Context, ids []string) (map[string]struct{}, error) {
	s.storageLock.RLock()
	defer s.storageLock.RUnlock()

	existing := make(map[string]struct{})
	for _, id := range ids {
		if _, ok := s.storage[id]; ok {
			existing[id] = struct{}{}
		}
	}
	return existing, nil
}

func (s *Store) Count(_ context.Context) (int64, error) {
	s.storageLock.RLock()
	defer s.storageLock.RUnlock()
	return int64(len(s.storage)), nil
}

func (s *Store) Collection() string {
	return s.collection
}

func (s *Store) Healthy(_ context.Context) bool {
	return true
}

func (s *Store) Close() {}

func newerFirst(a, b domain.Article) bool {
	if !a.PublishedAt.Equal(b.PublishedAt) {
		return a.PublishedAt.After(b.PublishedAt)
	}
	return a.ID > b.ID
}
