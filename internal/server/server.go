package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/DjordjeVuckovic/newsman/docs"
	"github.com/DjordjeVuckovic/newsman/internal/apperr"
	"github.com/DjordjeVuckovic/newsman/internal/monitor"
	mw "github.com/DjordjeVuckovic/newsman/pkg/middleware"
	pkgserver "github.com/DjordjeVuckovic/newsman/pkg/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

const (
	GracefulShutdownTimeout = 10 * time.Second
)

type Server struct {
	Echo *echo.Echo

	cfg    *Config
	health pkgserver.HealthChecker
	ring   *monitor.Ring
	ctx    context.Context
	stop   context.CancelFunc
}

// New creates the echo server. Its context is cancelled on SIGINT/SIGTERM.
// A nil health checker always reports healthy.
func New(cfg *Config, health pkgserver.HealthChecker) *Server {
	if health == nil {
		health = pkgserver.NewOkHealthChecker()
	}

	e := echo.New()
	e.HideBanner = true
	e.DisableHTTP2 = !cfg.UseHttp2

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	return &Server{
		Echo:   e,
		cfg:    cfg,
		health: health,
		ring:   monitor.NewRing(cfg.MonitorCapacity),
		ctx:    ctx,
		stop:   stop,
	}
}

// WithHealthChecker replaces the checker used by SetupHealthChecks.
func (s *Server) WithHealthChecker(health pkgserver.HealthChecker) *Server {
	s.health = health
	return s
}

func (s *Server) SetupMiddlewares() *Server {
	s.Echo.Use(mw.Logger(mw.WithSkipPrefixes("/swagger/", "/api/monitoring/stream")))
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.cfg.CorsOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete},
	}))
	s.Echo.Use(monitor.Middleware(s.ring))
	return s
}

func (s *Server) SetupErrorHandler() *Server {
	s.Echo.HTTPErrorHandler = apperr.GlobalErrorHandler()
	return s
}

// healthResponse is the body of the health endpoint.
type healthResponse struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
}

func (s *Server) SetupHealthChecks(path string) *Server {
	s.Echo.GET(path, func(c echo.Context) error {
		ctx := c.Request().Context()
		resp := healthResponse{Status: "ok", Timestamp: time.Now().UTC()}
		code := http.StatusOK

		if !s.health.Healthy(ctx) {
			resp.Status = "unavailable"
			code = http.StatusServiceUnavailable
		}
		if reporter, ok := s.health.(pkgserver.HealthReporter); ok {
			resp.Details = reporter.HealthDetails(ctx)
		}
		return c.JSON(code, resp)
	})
	return s
}

func (s *Server) SetupOpenApi(path string) *Server {
	s.Echo.GET(path, echoSwagger.WrapHandler)
	return s
}

// Ring is the recent request buffer fed by the monitoring middleware.
func (s *Server) Ring() *monitor.Ring {
	return s.ring
}

// Context is cancelled when the process is asked to shut down.
func (s *Server) Context() context.Context {
	return s.ctx
}

func (s *Server) ShutdownSignal() <-chan struct{} {
	return s.ctx.Done()
}

// Start serves until a shutdown signal arrives, then drains in-flight
// requests for at most GracefulShutdownTimeout.
func (s *Server) Start() error {
	defer s.stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", s.cfg.Port)
		if err := s.Echo.Start(":" + s.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-s.ctx.Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
	defer cancel()

	slog.Info("Shutting down HTTP server")
	return s.Echo.Shutdown(ctx)
}
