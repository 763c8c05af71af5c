// Package main NewsMan API
// @title NewsMan API
// @version 1.0
// @description Semantic search over articles ingested from RSS and Atom feeds
// @contact.name API Support
// @license.name Apache 2.0
// @license.url https://opensource.org/licenses/Apache-2.0
// @BasePath /
package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/DjordjeVuckovic/newsman/internal/cache"
	"github.com/DjordjeVuckovic/newsman/internal/company"
	"github.com/DjordjeVuckovic/newsman/internal/embedding"
	"github.com/DjordjeVuckovic/newsman/internal/ingest"
	"github.com/DjordjeVuckovic/newsman/internal/router"
	"github.com/DjordjeVuckovic/newsman/internal/scheduler"
	"github.com/DjordjeVuckovic/newsman/internal/search"
	"github.com/DjordjeVuckovic/newsman/internal/server"
	"github.com/DjordjeVuckovic/newsman/internal/storage/factory"
	"github.com/DjordjeVuckovic/newsman/pkg/logging"
	"github.com/labstack/echo/v4"
)

func main() {
	cfg, err := NewAppConfig().Load()
	if err != nil {
		slog.Error("Failed to load app configuration", "error", err)
		os.Exit(1)
	}

	logCloser, err := logging.Setup(cfg.Logging)
	if err != nil {
		slog.Error("Failed to set up logging", "error", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	if err := run(cfg); err != nil {
		slog.Error("Server stopped with error", "error", err)
		logCloser.Close()
		os.Exit(1)
	}
}

func run(cfg *NewsAPIConfig) error {
	embedder, err := embedding.NewFromConfig(cfg.EmbeddingConfig, cfg.StorageConfig.VectorSize)
	if err != nil {
		return err
	}

	// Signal handling lives in the server, so the store is created with its context.
	srv := server.New(cfg.Server, nil)
	ctx := srv.Context()

	store, err := factory.NewVectorStore(ctx, cfg.StorageConfig)
	if err != nil {
		return err
	}
	defer store.Close()

	companyStore, err := factory.NewCompanyStore(ctx, cfg.StorageConfig)
	if err != nil {
		return err
	}
	defer companyStore.Close()

	svc := search.NewService(store, embedder)
	companySvc := search.NewService(companyStore, embedder)
	srv = srv.WithHealthChecker(search.Collections{"main": svc, "company": companySvc}).
		SetupMiddlewares().
		SetupErrorHandler().
		SetupHealthChecks("/health").
		SetupOpenApi("/swagger/*")

	srv.Echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "NewsMan API is running")
	})

	fileCache := cache.NewFileCache(cfg.IngestConfig.CacheDir)
	pipeline, err := ingest.NewPipelineFromConfig(cfg.IngestConfig, store, embedder, fileCache)
	if err != nil {
		return err
	}

	sched := scheduler.New(pipeline, cfg.IngestConfig.UpdateInterval,
		scheduler.WithInitialDelay(cfg.IngestConfig.InitialDelay))
	if cfg.SchedulerEnabled {
		go sched.Start(ctx)
	} else {
		slog.Info("Scheduler disabled, ingestion runs only on demand")
	}

	router.NewSearchRouter(srv.Echo, svc).Bind()
	router.NewNewsRouter(srv.Echo, svc).Bind()
	router.NewCompanyRouter(srv.Echo, companySvc, company.NewPublisher(companyStore, embedder)).Bind()
	router.NewIngestRouter(srv.Echo, ctx, pipeline,
		router.WithScheduler(sched),
		router.WithCacheDiagnostics(fileCache),
	).Bind()
	router.NewMonitoringRouter(srv.Echo, srv.Ring(), cfg.Server.CorsOrigins).Bind()

	go func() {
		<-srv.ShutdownSignal()
		slog.Info("Shutdown started, cleaning up resources...")
	}()

	return srv.Start()
}
