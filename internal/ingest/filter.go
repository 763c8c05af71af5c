package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/newsman/internal/domain"
)

const DefaultMaxAge = 7 * 24 * time.Hour

// IDLookup reports which article IDs a store already holds.
type IDLookup interface {
	ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
}

type FilterResult struct {
	Articles     []domain.Article
	TotalFetched int
	Recent       int
	Existing     int
	New          int
}

// Filter drops articles older than the retention window and articles the
// store already has.
type Filter struct {
	store  IDLookup
	maxAge time.Duration
}

func NewFilter(store IDLookup, maxAge time.Duration) *Filter {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Filter{store: store, maxAge: maxAge}
}

func (f *Filter) MaxAge() time.Duration {
	return f.maxAge
}

// Apply keeps articles published at or after now-maxAge that are not stored
// yet. When the store lookup fails every recent article is treated as new
// and the lookup error is returned next to the result; upserts keyed by ID
// keep that safe.
func (f *Filter) Apply(ctx context.Context, articles []domain.Article, now time.Time) (*FilterResult, error) {
	cutoff := now.Add(-f.maxAge)

	recent := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if !a.PublishedAt.Before(cutoff) {
			recent = append(recent, a)
		}
	}

	res := &FilterResult{
		TotalFetched: len(articles),
		Recent:       len(recent),
	}
	if len(recent) == 0 {
		res.Articles = recent
		return res, nil
	}

	ids := make([]string, len(recent))
	for i, a := range recent {
		ids[i] = a.ID
	}

	existing, err := f.store.ExistingIDs(ctx, ids)
	if err != nil {
		res.Articles = recent
		res.New = len(recent)
		return res, fmt.Errorf("failed to look up existing articles: %w", err)
	}

	fresh := make([]domain.Article, 0, len(recent))
	seen := make(map[string]struct{}, len(recent))
	for _, a := range recent {
		if _, ok := existing[a.ID]; ok {
			res.Existing++
			continue
		}
		if _, dup := seen[a.ID]; dup {
			continue
		}
		seen[a.ID] = struct{}{}
		fresh = append(fresh, a)
	}

	res.Articles = fresh
	res.New = len(fresh)
	return res, nil
}
