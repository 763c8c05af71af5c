package router

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/DjordjeVuckovic/newsman/internal/cache"
	"github.com/DjordjeVuckovic/newsman/internal/dto"
	"github.com/DjordjeVuckovic/newsman/internal/ingest"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// DefaultFetchInterval is the minimum spacing between manual ingestion runs.
const DefaultFetchInterval = time.Minute

type StatusReporter interface {
	Active() bool
}

type IngestRouter struct {
	e        *echo.Echo
	pipeline ingest.Pipeline
	cache    *cache.FileCache
	limiter  *rate.Limiter
	sched    StatusReporter
	runCtx   context.Context
}

type IngestRouterOption func(*IngestRouter)

func WithFetchLimiter(limiter *rate.Limiter) IngestRouterOption {
	return func(r *IngestRouter) {
		r.limiter = limiter
	}
}

func WithScheduler(s StatusReporter) IngestRouterOption {
	return func(r *IngestRouter) {
		r.sched = s
	}
}

func WithCacheDiagnostics(c *cache.FileCache) IngestRouterOption {
	return func(r *IngestRouter) {
		r.cache = c
	}
}

// NewIngestRouter binds manual runs to runCtx so they stop with the server
// rather than with the triggering request.
func NewIngestRouter(e *echo.Echo, runCtx context.Context, pipeline ingest.Pipeline, opts ...IngestRouterOption) *IngestRouter {
	r := &IngestRouter{
		e:        e,
		pipeline: pipeline,
		limiter:  rate.NewLimiter(rate.Every(DefaultFetchInterval), 1),
		runCtx:   runCtx,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *IngestRouter) Bind() {
	r.e.POST("/api/news/fetch", r.fetchHandler)
	r.e.GET("/api/status", r.statusHandler)
	if r.cache != nil {
		r.e.GET("/api/cache/:source", r.cacheHandler)
	}
}

// fetchHandler godoc
// @Summary Trigger an ingestion run
// @Tags ingest
// @Produce json
// @Success 202 {object} dto.FetchResponse
// @Failure 409 {object} apperr.ErrorResponse
// @Failure 429 {object} apperr.ErrorResponse
// @Router /api/news/fetch [post]
func (r *IngestRouter) fetchHandler(c echo.Context) error {
	if r.pipeline.Running() {
		return echo.NewHTTPError(http.StatusConflict, ingest.ErrRunInProgress.Error())
	}
	if !r.limiter.Allow() {
		return echo.NewHTTPError(http.StatusTooManyRequests, "ingestion was triggered recently, try again later")
	}

	go func() {
		if _, err := r.pipeline.Run(r.runCtx); err != nil && !errors.Is(err, ingest.ErrRunInProgress) {
			slog.Error("Manual ingestion failed", "error", err)
		}
	}()

	return c.JSON(http.StatusAccepted, dto.FetchResponse{
		Success: true,
		Message: "ingestion started",
	})
}

type statusResponse struct {
	Success          bool           `json:"success"`
	SchedulerActive  bool           `json:"scheduler_active"`
	IngestionRunning bool           `json:"ingestion_running"`
	LastRun          *ingest.Report `json:"last_run"`
}

// statusHandler godoc
// @Summary Ingestion status and the last run report
// @Tags ingest
// @Produce json
// @Success 200 {object} statusResponse
// @Router /api/status [get]
func (r *IngestRouter) statusHandler(c echo.Context) error {
	resp := statusResponse{
		Success:          true,
		IngestionRunning: r.pipeline.Running(),
		LastRun:          r.pipeline.LastReport(),
	}
	if r.sched != nil {
		resp.SchedulerActive = r.sched.Active()
	}
	return c.JSON(http.StatusOK, resp)
}

// cacheHandler godoc
// @Summary Last fetched batch of one source
// @Tags ingest
// @Produce json
// @Param source path string true "feed name"
// @Success 200 {object} dto.CacheResponse
// @Failure 404 {object} apperr.ErrorResponse
// @Router /api/cache/{source} [get]
func (r *IngestRouter) cacheHandler(c echo.Context) error {
	source := c.Param("source")
	articles, err := r.cache.Load(source)
	if err != nil {
		return err
	}

	out := make([]dto.Article, len(articles))
	for i, a := range articles {
		out[i] = dto.ArticleFromDomain(a)
	}
	return c.JSON(http.StatusOK, dto.CacheResponse{
		Success:  true,
		Source:   source,
		Count:    len(out),
		Articles: out,
	})
}
