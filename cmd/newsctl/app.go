package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/DjordjeVuckovic/newsman/internal/cache"
	"github.com/DjordjeVuckovic/newsman/internal/embedding"
	"github.com/DjordjeVuckovic/newsman/internal/ingest"
	"github.com/DjordjeVuckovic/newsman/internal/search"
	"github.com/DjordjeVuckovic/newsman/internal/storage"
	"github.com/DjordjeVuckovic/newsman/internal/storage/factory"
	"github.com/DjordjeVuckovic/newsman/pkg/config/env"
	"github.com/DjordjeVuckovic/newsman/pkg/logging"
)

// app holds the components every subcommand works with.
type app struct {
	store    storage.VectorStore
	search   *search.Service
	pipeline ingest.Pipeline
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

type appFactory func(ctx context.Context) (*app, error)

func newAppFromEnv(ctx context.Context) (*app, error) {
	if err := env.LoadDotEnv(os.Getenv("ENV"), "cmd/newsctl/.env"); err != nil {
		slog.Debug("Continuing without .env file", "error", err)
	}

	logCfg, err := logging.LoadConfig()
	if err != nil {
		return nil, err
	}
	// Keep stdout for command output.
	slog.SetDefault(slog.New(logging.NewHandler(os.Stderr, logCfg)))

	storageCfg, err := factory.LoadEnv()
	if err != nil {
		return nil, err
	}
	embeddingCfg, err := embedding.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	ingestCfg, err := ingest.LoadConfig()
	if err != nil {
		return nil, err
	}

	embedder, err := embedding.NewFromConfig(embeddingCfg, storageCfg.VectorSize)
	if err != nil {
		return nil, err
	}

	store, err := factory.NewVectorStore(ctx, storageCfg)
	if err != nil {
		return nil, err
	}

	pipeline, err := ingest.NewPipelineFromConfig(ingestCfg, store, embedder, cache.NewFileCache(ingestCfg.CacheDir))
	if err != nil {
		store.Close()
		return nil, err
	}

	return &app{
		store:    store,
		search:   search.NewService(store, embedder),
		pipeline: pipeline,
	}, nil
}
