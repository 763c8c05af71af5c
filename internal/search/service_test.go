package search

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/newsman/internal/apperr"
	"github.com/DjordjeVuckovic/newsman/internal/domain"
	"github.com/DjordjeVuckovic/newsman/internal/storage"
	"github.com/DjordjeVuckovic/newsman/internal/storage/in_mem"
	"github.com/DjordjeVuckovic/newsman/internal/types/operator"
	"github.com/DjordjeVuckovic/newsman/internal/types/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (e mapEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

type brokenStore struct {
	*in_mem.Store
}

func (brokenStore) Query(context.Context, storage.QueryRequest) ([]domain.ScoredArticle, error) {
	return nil, fmt.Errorf("connection reset")
}

func (brokenStore) List(context.Context, storage.Filter, string, int) (*storage.Page, error) {
	return nil, fmt.Errorf("connection reset")
}

var day = time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

func seed(t *testing.T) *in_mem.Store {
	t.Helper()
	store := in_mem.NewStore("test", 3)
	records := []storage.Record{
		{Article: domain.Article{ID: "a", Title: "Chips", Source: "techcrunch", Categories: []string{"tech"}, PublishedAt: day.Add(10 * time.Hour)}, Vector: []float32{1, 0, 0}},
		{Article: domain.Article{ID: "b", Title: "Markets", Source: "wsj", Categories: []string{"business", "world"}, PublishedAt: day}, Vector: []float32{0, 1, 0}},
		{Article: domain.Article{ID: "c", Title: "Robots", Source: "techcrunch", Categories: []string{"tech", "science"}, PublishedAt: day.Add(-time.Hour)}, Vector: []float32{0.8, 0.6, 0}},
		{Article: domain.Article{ID: "d", Title: "Late", Source: "bbc", Categories: []string{}, PublishedAt: day.Add(24*time.Hour - time.Microsecond)}, Vector: []float32{0, 0, 1}},
		{Article: domain.Article{ID: "e", Title: "Tomorrow", Source: "bbc", Categories: []string{"world"}, PublishedAt: day.Add(24 * time.Hour)}, Vector: []float32{0, 0.6, 0.8}},
	}
	require.NoError(t, store.Upsert(context.Background(), records))
	return store
}

func ids(hits []domain.ScoredArticle) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.ID
	}
	return out
}

func ptr(f float64) *float64 { return &f }

type countingEmbedder struct {
	texts []string
	vec   []float32
}

func (e *countingEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	e.texts = append(e.texts, text)
	return e.vec, nil
}

func TestSearch_EmptyQueryIsEmbeddedAndRanked(t *testing.T) {
	emb := &countingEmbedder{vec: []float32{0, 0, 1}}
	svc := NewService(seed(t), emb)

	hits, err := svc.Search(context.Background(), query.Filter{Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{""}, emb.texts)
	assert.Equal(t, []string{"d", "e", "a", "b", "c"}, ids(hits))
	assert.Equal(t, 1.0, hits[0].Score)
	assert.InDelta(t, 0.8, hits[1].Score, 1e-4)

	hits, err = svc.Search(context.Background(), query.Filter{Limit: 5, MinScore: ptr(0.5)})
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "e"}, ids(hits))
	assert.Len(t, emb.texts, 2)
}

func TestBrowse_NewestFirstWithoutEmbedding(t *testing.T) {
	emb := &countingEmbedder{vec: []float32{0, 0, 1}}
	svc := NewService(seed(t), emb)

	hits, err := svc.Browse(context.Background(), query.Filter{Text: "ignored", Limit: 10, MinScore: ptr(0.99)})
	require.NoError(t, err)
	assert.Empty(t, emb.texts)
	assert.Equal(t, []string{"e", "d", "a", "b", "c"}, ids(hits))
	for _, h := range hits {
		assert.Zero(t, h.Score)
	}
}

func TestSearch_TextQueryRanksBySimilarity(t *testing.T) {
	emb := mapEmbedder{vectors: map[string][]float32{"chips": {1, 0, 0}}}
	svc := NewService(seed(t), emb)

	hits, err := svc.Search(context.Background(), query.Filter{Text: "chips", Limit: 10, MinScore: ptr(0.35)})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids(hits))
	assert.Equal(t, 1.0, hits[0].Score)
	assert.InDelta(t, 0.8, hits[1].Score, 1e-4)

	hits, err = svc.Search(context.Background(), query.Filter{Text: "chips", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, hits, 5)
}

func TestSearch_Slicing(t *testing.T) {
	svc := NewService(seed(t), mapEmbedder{})

	hits, err := svc.Search(context.Background(), query.Filter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"e", "a"}, ids(hits))

	hits, err = svc.Browse(context.Background(), query.Filter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "a"}, ids(hits))

	hits, err = svc.Search(context.Background(), query.Filter{Limit: 2, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.NotNil(t, hits)
}

func TestBrowse_Filters(t *testing.T) {
	svc := NewService(seed(t), mapEmbedder{})

	on := query.NewDateRange(operator.On, day.Add(13*time.Hour))
	tests := []struct {
		name   string
		filter query.Filter
		want   []string
	}{
		{"source", query.Filter{Source: "techcrunch"}, []string{"a", "c"}},
		{"category", query.Filter{Category: "world"}, []string{"e", "b"}},
		{"on covers the whole day", query.Filter{Date: &on}, []string{"d", "a", "b"}},
		{"anded", query.Filter{Source: "techcrunch", Category: "science"}, []string{"c"}},
		{"unknown source", query.Filter{Source: "nope"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.filter.Limit = 10
			hits, err := svc.Browse(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(hits))
		})
	}
}

func TestSearch_FailuresYieldEmptyResult(t *testing.T) {
	t.Run("store", func(t *testing.T) {
		svc := NewService(brokenStore{seed(t)}, mapEmbedder{})
		hits, err := svc.Search(context.Background(), query.Filter{Limit: 5})
		require.NoError(t, err)
		assert.Empty(t, hits)

		hits, err = svc.Browse(context.Background(), query.Filter{Limit: 5})
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("embedding", func(t *testing.T) {
		svc := NewService(seed(t), mapEmbedder{err: fmt.Errorf("model offline")})
		hits, err := svc.Search(context.Background(), query.Filter{Text: "chips", Limit: 5})
		require.NoError(t, err)
		assert.Empty(t, hits)
	})
}

func TestSearch_RejectsBadPage(t *testing.T) {
	svc := NewService(seed(t), mapEmbedder{})
	_, err := svc.Search(context.Background(), query.Filter{Limit: 500})

	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = svc.Browse(context.Background(), query.Filter{Limit: 10, Offset: -1})
	assert.ErrorAs(t, err, &ve)
}

func TestService_SourcesAndCategories(t *testing.T) {
	svc := NewService(seed(t), mapEmbedder{})

	sources, err := svc.Sources(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"bbc", "techcrunch", "wsj"}, sources)

	categories, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"business", "science", "tech", "world"}, categories)

	_, err = NewService(brokenStore{seed(t)}, mapEmbedder{}).Sources(context.Background())
	assert.Error(t, err)
}

func TestService_ScanPagesThroughLargeStores(t *testing.T) {
	store := in_mem.NewStore("test", 3)
	var records []storage.Record
	for i := 0; i < storage.ListPageSize*2+5; i++ {
		records = append(records, storage.Record{
			Article: domain.Article{ID: fmt.Sprintf("id-%03d", i), Source: fmt.Sprintf("src-%d", i%7), PublishedAt: day.Add(time.Duration(i%3) * time.Hour)},
			Vector:  []float32{1, 0, 0},
		})
	}
	require.NoError(t, store.Upsert(context.Background(), records))

	svc := NewService(store, mapEmbedder{})
	sources, err := svc.Sources(context.Background())
	require.NoError(t, err)
	assert.Len(t, sources, 7)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	total := 0
	for _, n := range stats.Sources {
		total += n
	}
	assert.Equal(t, len(records), total)
}

func TestService_Stats(t *testing.T) {
	now := day.Add(24*time.Hour + 8*time.Hour)
	svc := NewService(seed(t), mapEmbedder{}, WithClock(func() time.Time { return now }))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 5, stats.TotalArticles)
	assert.Equal(t, 1, stats.ArticlesToday)
	assert.Equal(t, map[string]int{"techcrunch": 2, "wsj": 1, "bbc": 2}, stats.Sources)
	assert.Equal(t, 2, stats.Categories["tech"])
	assert.Equal(t, 2, stats.Categories["world"])
	assert.Equal(t, now, stats.Timestamp)
}

func TestService_Get(t *testing.T) {
	svc := NewService(seed(t), mapEmbedder{})

	a, err := svc.Get(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "Markets", a.Title)

	_, err = svc.Get(context.Background(), "zzz")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_Health(t *testing.T) {
	h := NewService(seed(t), mapEmbedder{}).Health(context.Background())
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, "test", h.Collection)
	assert.EqualValues(t, 5, h.Articles)
}

type downStore struct {
	*in_mem.Store
}

func (downStore) Healthy(context.Context) bool { return false }

func TestCollections_HealthDetails(t *testing.T) {
	c := Collections{
		"main":    NewService(seed(t), mapEmbedder{}),
		"company": NewService(in_mem.NewStore("company_news_collection", 3), mapEmbedder{}),
	}
	assert.True(t, c.Healthy(context.Background()))

	details := c.HealthDetails(context.Background())
	require.Contains(t, details, "collections")
	collections := details["collections"].(map[string]any)
	assert.Equal(t, map[string]any{"name": "test", "exists": true, "articles_count": int64(5)}, collections["main"])
	assert.Equal(t, map[string]any{"name": "company_news_collection", "exists": true, "articles_count": int64(0)}, collections["company"])

	c["company"] = NewService(downStore{in_mem.NewStore("company_news_collection", 3)}, mapEmbedder{})
	assert.False(t, c.Healthy(context.Background()))
	collections = c.HealthDetails(context.Background())["collections"].(map[string]any)
	assert.Equal(t, false, collections["company"].(map[string]any)["exists"])
}
