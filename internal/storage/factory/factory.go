package factory

import (
	"context"
	"fmt"

	"github.com/DjordjeVuckovic/newsman/internal/storage"
	"github.com/DjordjeVuckovic/newsman/internal/storage/es"
	"github.com/DjordjeVuckovic/newsman/internal/storage/in_mem"
	"github.com/DjordjeVuckovic/newsman/internal/storage/pg"
)

// NewVectorStore creates the storage.VectorStore selected by cfg.Type and
// makes sure its collection exists.
func NewVectorStore(ctx context.Context, cfg *StorageConfig) (storage.VectorStore, error) {
	esIndex := ""
	if cfg.Es != nil {
		esIndex = cfg.Es.IndexName
	}
	return newStore(ctx, cfg, cfg.Collection, esIndex)
}

// NewCompanyStore opens the company collection on the same backend as the
// main store. It never shares a connection pool with it.
func NewCompanyStore(ctx context.Context, cfg *StorageConfig) (storage.VectorStore, error) {
	return newStore(ctx, cfg, cfg.CompanyCollection, cfg.CompanyCollection)
}

func newStore(ctx context.Context, cfg *StorageConfig, collection, esIndex string) (storage.VectorStore, error) {
	var store storage.VectorStore

	switch cfg.Type {
	case storage.PG:
		if cfg.Pg == nil {
			return nil, fmt.Errorf("missing PostgreSQL configuration")
		}
		pool, err := pg.NewConnectionPool(ctx, *cfg.Pg)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL connection pool: %w", err)
		}
		store = pg.NewStore(pool, collection, cfg.VectorSize)

	case storage.ES:
		if cfg.Es == nil {
			return nil, fmt.Errorf("missing Elasticsearch configuration")
		}
		esCfg := *cfg.Es
		esCfg.IndexName = esIndex
		esStore, err := es.NewStore(esCfg, cfg.VectorSize)
		if err != nil {
			return nil, err
		}
		store = esStore

	case storage.InMem:
		store = in_mem.NewStore(collection, cfg.VectorSize)

	default:
		return nil, fmt.Errorf(string(storage.ErrUnsupportedStorer), cfg.Type)
	}

	if err := store.EnsureCollection(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to ensure collection %s: %w", collection, err)
	}

	return store, nil
}
