package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/DjordjeVuckovic/newsman/internal/ingest"
)

const DefaultInterval = time.Hour

// Runner is one ingestion run.
type Runner interface {
	Run(ctx context.Context) (*ingest.Report, error)
}

// Scheduler runs ingestion once after an initial delay and then on a fixed
// interval until its context is cancelled.
type Scheduler struct {
	runner       Runner
	interval     time.Duration
	initialDelay time.Duration
	active       atomic.Bool
}

type Option func(*Scheduler)

func WithInitialDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.initialDelay = d
		}
	}
}

func New(runner Runner, interval time.Duration, opts ...Option) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Scheduler{runner: runner, interval: interval}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.active.Store(true)
	defer s.active.Store(false)

	slog.Info("Scheduler started", "interval", s.interval, "initial_delay", s.initialDelay)

	if s.initialDelay > 0 {
		timer := time.NewTimer(s.initialDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("Scheduler stopped before first run")
			return
		case <-timer.C:
		}
	}

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) Active() bool {
	return s.active.Load()
}

func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

func (s *Scheduler) runOnce(ctx context.Context) {
	_, err := s.runner.Run(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ingest.ErrRunInProgress):
		slog.Info("Scheduled ingestion skipped, a run is already in progress")
	case errors.Is(err, context.Canceled):
		slog.Info("Scheduled ingestion cancelled")
	default:
		slog.Error("Scheduled ingestion failed", "error", err)
	}
}
