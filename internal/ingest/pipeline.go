package ingest

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DjordjeVuckovic/newsman/internal/domain"
	"github.com/DjordjeVuckovic/newsman/internal/storage"
)

const DefaultBatchSize = 10

var ErrRunInProgress = errors.New("ingestion run already in progress")

// Pipeline runs one full ingestion: collect, filter, embed and store.
type Pipeline interface {
	Run(ctx context.Context) (*Report, error)
	Running() bool
	LastReport() *Report
}

// ArticleEmbedder turns a batch of articles into one vector per article.
type ArticleEmbedder interface {
	EmbedArticles(ctx context.Context, articles []domain.Article) ([][]float32, error)
}

// Report describes one ingestion run.
type Report struct {
	TotalFetched     int             `json:"total_fetched"`
	RecentArticles   int             `json:"recent_articles"`
	ExistingArticles int             `json:"existing_articles"`
	NewArticles      int             `json:"new_articles_added"`
	Stored           int             `json:"stored_articles"`
	FailedSources    []SourceFailure `json:"failed_sources"`
	StartedAt        time.Time       `json:"started_at"`
	FinishedAt       time.Time       `json:"timestamp"`
}

type FeedPipeline struct {
	collector *Collector
	filter    *Filter
	embedder  ArticleEmbedder
	store     storage.VectorStore
	batchSize int
	now       func() time.Time

	running atomic.Bool
	mu      sync.RWMutex
	last    *Report
}

type PipelineOption func(*FeedPipeline)

func WithBatchSize(size int) PipelineOption {
	return func(p *FeedPipeline) {
		if size > 0 {
			p.batchSize = size
		}
	}
}

func WithPipelineClock(now func() time.Time) PipelineOption {
	return func(p *FeedPipeline) {
		p.now = now
	}
}

func NewFeedPipeline(c *Collector, f *Filter, embedder ArticleEmbedder, store storage.VectorStore, opts ...PipelineOption) *FeedPipeline {
	p := &FeedPipeline{
		collector: c,
		filter:    f,
		embedder:  embedder,
		store:     store,
		batchSize: DefaultBatchSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run returns ErrRunInProgress when another run has not finished yet.
// Store and embedding failures drop the affected batch and are only logged.
func (p *FeedPipeline) Run(ctx context.Context) (*Report, error) {
	if !p.running.CompareAndSwap(false, true) {
		slog.Warn("Skipping ingestion, previous run still in progress")
		return nil, ErrRunInProgress
	}
	defer p.running.Store(false)

	start := p.now()
	slog.Info("Starting ingestion run", "sources", len(p.collector.Sources()), "max_age", p.filter.MaxAge())

	collected := p.collector.Collect(ctx)

	filtered, err := p.filter.Apply(ctx, collected.Articles, start)
	if err != nil {
		slog.Error("Error checking existing articles, storing all recent ones", "error", err)
	}

	report := &Report{
		TotalFetched:     filtered.TotalFetched,
		RecentArticles:   filtered.Recent,
		ExistingArticles: filtered.Existing,
		NewArticles:      filtered.New,
		FailedSources:    collected.Failures,
		StartedAt:        start,
	}

	stored, runErr := p.storeArticles(ctx, filtered.Articles)
	report.Stored = stored
	report.FinishedAt = p.now()

	p.mu.Lock()
	p.last = report
	p.mu.Unlock()

	slog.Info("Ingestion run completed",
		"total_fetched", report.TotalFetched,
		"recent", report.RecentArticles,
		"existing", report.ExistingArticles,
		"new", report.NewArticles,
		"stored", report.Stored,
		"failed_sources", len(report.FailedSources),
		"duration", report.FinishedAt.Sub(start),
	)

	return report, runErr
}

func (p *FeedPipeline) storeArticles(ctx context.Context, articles []domain.Article) (int, error) {
	stored := 0
	for start := 0; start < len(articles); start += p.batchSize {
		if err := ctx.Err(); err != nil {
			slog.Info("Ingestion context cancelled, stopping", "stored", stored)
			return stored, err
		}

		end := min(start+p.batchSize, len(articles))
		batch := articles[start:end]

		vectors, err := p.embedder.EmbedArticles(ctx, batch)
		if err != nil {
			slog.Error("Error embedding batch", "error", err, "count", len(batch))
			continue
		}

		records := make([]storage.Record, len(batch))
		for i, a := range batch {
			records[i] = storage.Record{Article: a, Vector: vectors[i]}
		}

		if err := p.store.Upsert(ctx, records); err != nil {
			slog.Error("Error storing batch", "error", err, "count", len(batch))
			continue
		}
		stored += len(batch)
		slog.Debug("Stored batch", "count", len(batch), "total", stored)
	}
	return stored, nil
}

func (p *FeedPipeline) Running() bool {
	return p.running.Load()
}

func (p *FeedPipeline) LastReport() *Report {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}
