package testing

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const pgvectorImage = "pgvector/pgvector:pg17"

// PGContainer is a running PostgreSQL server with the pgvector extension.
type PGContainer struct {
	Container  testcontainers.Container
	ConnString string
}

type PGConfig struct {
	Image    string
	Database string
	Username string
	Password string
	// Migrations are applied as init scripts in file name order.
	Migrations []string
}

func defaultPGConfig() PGConfig {
	return PGConfig{
		Image:    pgvectorImage,
		Database: "newsman_test",
		Username: "test",
		Password: "test",
	}
}

func NewPGContainer(ctx context.Context, cfg PGConfig) (*PGContainer, error) {
	if cfg.Image == "" {
		cfg.Image = pgvectorImage
	}

	pgContainer, err := postgres.Run(ctx,
		cfg.Image,
		postgres.WithDatabase(cfg.Database),
		postgres.WithUsername(cfg.Username),
		postgres.WithPassword(cfg.Password),
		postgres.WithInitScripts(cfg.Migrations...),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = testcontainers.TerminateContainer(pgContainer)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	return &PGContainer{Container: pgContainer, ConnString: connStr}, nil
}

// NewPGContainerWithCleanup starts a container with the repository
// migrations applied and terminates it when tb finishes.
func NewPGContainerWithCleanup(ctx context.Context, tb testing.TB) *PGContainer {
	tb.Helper()

	migrations, err := MigrationFiles()
	if err != nil {
		tb.Fatalf("failed to list migrations: %v", err)
	}

	cfg := defaultPGConfig()
	cfg.Migrations = migrations

	container, err := NewPGContainer(ctx, cfg)
	if err != nil {
		tb.Fatalf("failed to create postgres container: %v", err)
	}

	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container.Container); err != nil {
			tb.Logf("failed to terminate postgres container: %v", err)
		}
	})

	return container
}

// MigrationFiles returns the *.up.sql files under db/migrations, sorted.
func MigrationFiles() ([]string, error) {
	_, file, _, _ := runtime.Caller(0)
	dir := filepath.Join(filepath.Dir(file), "..", "..", "db", "migrations")

	files, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		return nil, fmt.Errorf("failed to find migration files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}
