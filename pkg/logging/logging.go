package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/DjordjeVuckovic/newsman/pkg/config/env"
)

type Config struct {
	Level slog.Level
	// File, when set, receives a copy of everything written to stdout.
	File string
	JSON bool
}

func LoadConfig() (*Config, error) {
	level, err := ParseLevel(env.String("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	return &Config{
		Level: level,
		File:  env.String("LOG_FILE", ""),
		JSON:  strings.EqualFold(env.String("LOG_FORMAT", "text"), "json"),
	}, nil
}

func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// Setup installs the process-wide slog default. The returned closer releases
// the log file, if any.
func Setup(cfg *Config) (io.Closer, error) {
	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, f)
		closer = f
	}

	slog.SetDefault(slog.New(NewHandler(out, cfg)))
	return closer, nil
}

func NewHandler(w io.Writer, cfg *Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.JSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
