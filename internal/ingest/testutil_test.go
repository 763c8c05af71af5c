package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DjordjeVuckovic/newsman/internal/apperr"
	"github.com/DjordjeVuckovic/newsman/internal/domain"
	"github.com/DjordjeVuckovic/newsman/internal/feed"
)

type fakeFetcher struct {
	entries map[string][]feed.Entry
	errs    map[string]error
	calls   []string
}

func (f *fakeFetcher) Fetch(_ context.Context, src domain.FeedSource) ([]feed.Entry, error) {
	f.calls = append(f.calls, src.Name)
	if err, ok := f.errs[src.Name]; ok {
		return nil, err
	}
	return f.entries[src.Name], nil
}

type recordingCache struct {
	mu    sync.Mutex
	saved map[string][]domain.Article
	err   error
}

func (c *recordingCache) Save(source string, articles []domain.Article) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.saved == nil {
		c.saved = map[string][]domain.Article{}
	}
	c.saved[source] = articles
	return nil
}

type fakeEmbedder struct {
	dim     int
	failOn  int
	calls   int
	batches []int
}

func (e *fakeEmbedder) EmbedArticles(_ context.Context, articles []domain.Article) ([][]float32, error) {
	e.calls++
	e.batches = append(e.batches, len(articles))
	if e.failOn == e.calls {
		return nil, fmt.Errorf("embedding backend unavailable")
	}
	out := make([][]float32, len(articles))
	for i := range articles {
		v := make([]float32, e.dim)
		v[0] = 1
		out[i] = v
	}
	return out, nil
}

func entry(title, link string, published time.Time) feed.Entry {
	return feed.Entry{
		Title:           title,
		Link:            link,
		Content:         "<p>" + title + " body</p>",
		PublishedParsed: &published,
	}
}

func networkError(source string) error {
	return &apperr.FetchError{Source: source, Kind: apperr.FetchNetwork, Err: fmt.Errorf("connection refused")}
}
