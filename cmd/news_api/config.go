package main

import (
	"log/slog"
	"os"

	"github.com/DjordjeVuckovic/newsman/internal/embedding"
	"github.com/DjordjeVuckovic/newsman/internal/ingest"
	"github.com/DjordjeVuckovic/newsman/internal/server"
	"github.com/DjordjeVuckovic/newsman/internal/storage/factory"
	"github.com/DjordjeVuckovic/newsman/pkg/config/env"
	"github.com/DjordjeVuckovic/newsman/pkg/logging"
)

type AppConfig struct {
	ENV string
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		ENV: os.Getenv("ENV"),
	}
}

type NewsAPIConfig struct {
	Logging         *logging.Config
	Server          *server.Config
	StorageConfig   *factory.StorageConfig
	EmbeddingConfig *embedding.Config
	IngestConfig    *ingest.Config
	// SchedulerEnabled turns the background ingestion loop on.
	SchedulerEnabled bool
}

func (as *AppConfig) Load() (*NewsAPIConfig, error) {
	err := env.LoadDotEnv(as.ENV, "cmd/news_api/.env")
	if err != nil {
		slog.Info("Failed to .env load environment variables, continuing with existing environment variables", "error", err)
	}

	logCfg, err := logging.LoadConfig()
	if err != nil {
		return nil, err
	}

	serverCfg, err := server.LoadConfig()
	if err != nil {
		return nil, err
	}

	storageCfg, err := factory.LoadEnv()
	if err != nil {
		slog.Error("Failed to load storage configuration from environment", "error", err)
		return nil, err
	}

	embeddingCfg, err := embedding.LoadConfigFromEnv()
	if err != nil {
		slog.Error("Failed to load embedding configuration from environment", "error", err)
		return nil, err
	}

	ingestCfg, err := ingest.LoadConfig()
	if err != nil {
		slog.Error("Failed to load ingestion configuration from environment", "error", err)
		return nil, err
	}

	schedulerEnabled, err := env.Bool("SCHEDULER_ENABLED", true)
	if err != nil {
		return nil, err
	}

	return &NewsAPIConfig{
		Logging:          logCfg,
		Server:           serverCfg,
		StorageConfig:    storageCfg,
		EmbeddingConfig:  embeddingCfg,
		IngestConfig:     ingestCfg,
		SchedulerEnabled: schedulerEnabled,
	}, nil
}
