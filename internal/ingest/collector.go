package ingest

import (
	"context"
	"log/slog"
	"sort"

	"github.com/DjordjeVuckovic/newsman/internal/apperr"
	"github.com/DjordjeVuckovic/newsman/internal/domain"
	"github.com/DjordjeVuckovic/newsman/internal/feed"
)

const DefaultMaxArticles = 10

// EntryFetcher downloads the raw entries of one feed.
type EntryFetcher interface {
	Fetch(ctx context.Context, src domain.FeedSource) ([]feed.Entry, error)
}

// ArticleCache keeps the last normalized batch of every source.
type ArticleCache interface {
	Save(source string, articles []domain.Article) error
}

// SourceFailure is a feed that could not be fetched during a run.
type SourceFailure struct {
	Source    string `json:"source"`
	Error     string `json:"error"`
	Temporary bool   `json:"temporary"`
	Err       error  `json:"-"`
}

type CollectResult struct {
	Articles []domain.Article
	Failures []SourceFailure
}

// Collector fetches every configured source one after another and merges
// the normalized articles, newest first.
type Collector struct {
	sources     []domain.FeedSource
	fetcher     EntryFetcher
	normalizer  *feed.Normalizer
	cache       ArticleCache
	maxArticles int
}

type CollectorOption func(*Collector)

func WithCache(cache ArticleCache) CollectorOption {
	return func(c *Collector) {
		c.cache = cache
	}
}

// WithDefaultMaxArticles caps sources that do not set their own limit.
func WithDefaultMaxArticles(n int) CollectorOption {
	return func(c *Collector) {
		if n > 0 {
			c.maxArticles = n
		}
	}
}

func NewCollector(sources []domain.FeedSource, fetcher EntryFetcher, normalizer *feed.Normalizer, opts ...CollectorOption) *Collector {
	c := &Collector{
		sources:     sources,
		fetcher:     fetcher,
		normalizer:  normalizer,
		maxArticles: DefaultMaxArticles,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collector) Sources() []domain.FeedSource {
	return c.sources
}

// Collect never fails as a whole. Sources that cannot be fetched are logged,
// reported in Failures and skipped.
func (c *Collector) Collect(ctx context.Context) *CollectResult {
	result := &CollectResult{}

	for _, src := range c.sources {
		if err := ctx.Err(); err != nil {
			slog.Info("Collection context cancelled, stopping", "remaining_from", src.Name)
			break
		}

		entries, err := c.fetcher.Fetch(ctx, src)
		if err != nil {
			slog.Error("Error fetching feed", "source", src.Name, "url", src.URL, "error", err)
			result.Failures = append(result.Failures, SourceFailure{
				Source:    src.Name,
				Error:     err.Error(),
				Temporary: apperr.IsTemporary(err),
				Err:       err,
			})
			continue
		}

		if limit := c.limitFor(src); len(entries) > limit {
			entries = entries[:limit]
		}

		articles := c.normalizer.NormalizeAll(entries, src.Name)
		slog.Info("Fetched feed", "source", src.Name, "entries", len(entries), "articles", len(articles))

		if len(articles) > 0 && c.cache != nil {
			if err := c.cache.Save(src.Name, articles); err != nil {
				slog.Warn("Error caching articles", "source", src.Name, "error", err)
			}
		}

		result.Articles = append(result.Articles, articles...)
	}

	sort.SliceStable(result.Articles, func(i, j int) bool {
		return result.Articles[i].PublishedAt.After(result.Articles[j].PublishedAt)
	})

	return result
}

func (c *Collector) limitFor(src domain.FeedSource) int {
	if src.MaxArticles > 0 {
		return src.MaxArticles
	}
	return c.maxArticles
}
