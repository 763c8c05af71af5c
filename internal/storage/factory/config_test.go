package factory

import (
	"context"
	"testing"

	"github.com/DjordjeVuckovic/newsman/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	t.Run("missing type", func(t *testing.T) {
		t.Setenv("STORAGE_TYPE", "")
		_, err := LoadEnv()
		assert.Error(t, err)
	})

	t.Run("unknown type", func(t *testing.T) {
		t.Setenv("STORAGE_TYPE", "qdrant")
		_, err := LoadEnv()
		assert.Error(t, err)
	})

	t.Run("in memory defaults", func(t *testing.T) {
		t.Setenv("STORAGE_TYPE", "in_mem")
		t.Setenv("VECTOR_COLLECTION", "")
		t.Setenv("VECTOR_SIZE", "")
		t.Setenv("COMPANY_COLLECTION", "")
		cfg, err := LoadEnv()
		require.NoError(t, err)
		assert.Equal(t, storage.InMem, cfg.Type)
		assert.Equal(t, storage.DefaultCollection, cfg.Collection)
		assert.Equal(t, storage.DefaultCompanyCollection, cfg.CompanyCollection)
		assert.Equal(t, storage.DefaultVectorSize, cfg.VectorSize)
	})

	t.Run("company collection must be separate", func(t *testing.T) {
		t.Setenv("STORAGE_TYPE", "in_mem")
		t.Setenv("VECTOR_COLLECTION", "news")
		t.Setenv("COMPANY_COLLECTION", "news")
		_, err := LoadEnv()
		assert.Error(t, err)
	})

	t.Run("invalid vector size", func(t *testing.T) {
		t.Setenv("STORAGE_TYPE", "in_mem")
		t.Setenv("VECTOR_SIZE", "-3")
		_, err := LoadEnv()
		assert.Error(t, err)
	})

	t.Run("pg requires connection string", func(t *testing.T) {
		t.Setenv("STORAGE_TYPE", "pg")
		t.Setenv("PG_CONNECTION_STRING", "")
		_, err := LoadEnv()
		assert.Error(t, err)
	})

	t.Run("pg pool sizing", func(t *testing.T) {
		t.Setenv("STORAGE_TYPE", "pg")
		t.Setenv("PG_CONNECTION_STRING", "postgres://u:p@localhost:5432/news")
		t.Setenv("PG_MAX_CONNS", "8")
		t.Setenv("PG_MIN_CONNS", "")
		cfg, err := LoadEnv()
		require.NoError(t, err)
		require.NotNil(t, cfg.Pg)
		assert.Equal(t, int32(8), cfg.Pg.MaxConns)
		assert.Zero(t, cfg.Pg.MinConns)

		t.Setenv("PG_MAX_CONNS", "many")
		_, err = LoadEnv()
		assert.Error(t, err)
	})

	t.Run("es index falls back to collection", func(t *testing.T) {
		t.Setenv("STORAGE_TYPE", "es")
		t.Setenv("ES_ADDRESSES", "http://localhost:9200, ")
		t.Setenv("ES_INDEX_NAME", "")
		t.Setenv("VECTOR_COLLECTION", "articles")
		cfg, err := LoadEnv()
		require.NoError(t, err)
		require.NotNil(t, cfg.Es)
		assert.Equal(t, []string{"http://localhost:9200"}, cfg.Es.Addresses)
		assert.Equal(t, "articles", cfg.Es.IndexName)
	})
}

func TestNewVectorStore_InMem(t *testing.T) {
	store, err := NewVectorStore(context.Background(), &StorageConfig{
		Type:       storage.InMem,
		Collection: "test",
		VectorSize: 4,
	})
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, "test", store.Collection())
	assert.True(t, store.Healthy(context.Background()))
}

func TestNewCompanyStore_InMem(t *testing.T) {
	cfg := &StorageConfig{
		Type:              storage.InMem,
		Collection:        "news",
		CompanyCollection: "company",
		VectorSize:        4,
	}

	news, err := NewVectorStore(context.Background(), cfg)
	require.NoError(t, err)
	defer news.Close()
	company, err := NewCompanyStore(context.Background(), cfg)
	require.NoError(t, err)
	defer company.Close()

	assert.Equal(t, "news", news.Collection())
	assert.Equal(t, "company", company.Collection())
}

func TestNewVectorStore_Unsupported(t *testing.T) {
	_, err := NewVectorStore(context.Background(), &StorageConfig{Type: "qdrant"})
	assert.Error(t, err)
}
