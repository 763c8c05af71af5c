package ingest

import (
	"time"

	"github.com/DjordjeVuckovic/newsman/internal/cache"
	"github.com/DjordjeVuckovic/newsman/internal/feed"
	"github.com/DjordjeVuckovic/newsman/internal/storage"
	"github.com/DjordjeVuckovic/newsman/pkg/config/env"
)

type Config struct {
	FeedsPath          string
	MaxAge             time.Duration
	MaxArticlesPerFeed int
	RequestTimeout     time.Duration
	UserAgent          string
	CacheDir           string
	StripHTML          bool
	BatchSize          int
	UpdateInterval     time.Duration
	InitialDelay       time.Duration
}

func LoadConfig() (*Config, error) {
	maxAgeDays, err := env.Int("ARTICLE_MAX_AGE_DAYS", int(DefaultMaxAge/(24*time.Hour)))
	if err != nil {
		return nil, err
	}
	maxArticles, err := env.Int("MAX_ARTICLES_PER_FEED", DefaultMaxArticles)
	if err != nil {
		return nil, err
	}
	timeout, err := env.Duration("REQUEST_TIMEOUT", feed.DefaultTimeout, time.Second)
	if err != nil {
		return nil, err
	}
	stripHTML, err := env.Bool("REMOVE_HTML_TAGS", true)
	if err != nil {
		return nil, err
	}
	batchSize, err := env.Int("EMBEDDING_BATCH_SIZE", DefaultBatchSize)
	if err != nil {
		return nil, err
	}
	interval, err := env.Duration("UPDATE_INTERVAL", time.Hour, time.Second)
	if err != nil {
		return nil, err
	}
	delay, err := env.Duration("INITIAL_DELAY", 0, time.Second)
	if err != nil {
		return nil, err
	}

	return &Config{
		FeedsPath:          env.String("FEEDS_CONFIG_PATH", ""),
		MaxAge:             time.Duration(maxAgeDays) * 24 * time.Hour,
		MaxArticlesPerFeed: maxArticles,
		RequestTimeout:     timeout,
		UserAgent:          env.String("USER_AGENT", feed.DefaultUserAgent),
		CacheDir:           env.String("CACHE_DIR", "/tmp/news_cache"),
		StripHTML:          stripHTML,
		BatchSize:          batchSize,
		UpdateInterval:     interval,
		InitialDelay:       delay,
	}, nil
}

// NewPipelineFromConfig wires the fetcher, normalizer, collector and filter
// described by cfg around store and embedder.
func NewPipelineFromConfig(cfg *Config, store storage.VectorStore, embedder ArticleEmbedder, fc *cache.FileCache) (*FeedPipeline, error) {
	sources, err := LoadSources(cfg.FeedsPath)
	if err != nil {
		return nil, err
	}

	fetcher := feed.NewFetcher(
		feed.WithTimeout(cfg.RequestTimeout),
		feed.WithUserAgent(cfg.UserAgent),
	)
	normalizer := feed.NewNormalizer(feed.WithStripHTML(cfg.StripHTML))

	opts := []CollectorOption{WithDefaultMaxArticles(cfg.MaxArticlesPerFeed)}
	if fc != nil {
		opts = append(opts, WithCache(fc))
	}
	collector := NewCollector(sources, fetcher, normalizer, opts...)

	return NewFeedPipeline(
		collector,
		NewFilter(store, cfg.MaxAge),
		embedder,
		store,
		WithBatchSize(cfg.BatchSize),
	), nil
}
