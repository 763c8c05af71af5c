package factory

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/DjordjeVuckovic/newsman/internal/storage"
	"github.com/DjordjeVuckovic/newsman/internal/storage/es"
	"github.com/DjordjeVuckovic/newsman/internal/storage/pg"
	"github.com/DjordjeVuckovic/newsman/pkg/config/env"
	"github.com/DjordjeVuckovic/newsman/pkg/utils"
)

type StorageConfig struct {
	storage.Type
	Collection        string
	// CompanyCollection holds articles published through the company API.
	CompanyCollection string
	VectorSize        int
	Pg                *pg.PoolConfig
	Es                *es.ClientConfig
}

func LoadEnv() (*StorageConfig, error) {
	storageType := (storage.Type)(os.Getenv("STORAGE_TYPE"))
	if storageType == "" {
		slog.Error("STORAGE_TYPE environment variable is not set")
		return nil, fmt.Errorf("STORAGE_TYPE environment variable is not set")
	}
	if storageType != storage.ES && storageType != storage.PG && storageType != storage.InMem {
		slog.Error("Invalid STORAGE_TYPE environment variable value", "value", storageType)
		return nil, fmt.Errorf(
			"invalid STORAGE_TYPE environment variable value: %s, expected one of %v",
			storageType,
			[]storage.Type{storage.ES, storage.PG, storage.InMem})
	}

	collection := os.Getenv("VECTOR_COLLECTION")
	if collection == "" {
		collection = storage.DefaultCollection
	}

	companyCollection := os.Getenv("COMPANY_COLLECTION")
	if companyCollection == "" {
		companyCollection = storage.DefaultCompanyCollection
	}
	if companyCollection == collection {
		return nil, fmt.Errorf("COMPANY_COLLECTION must differ from VECTOR_COLLECTION (%s)", collection)
	}

	vectorSize := storage.DefaultVectorSize
	if v := os.Getenv("VECTOR_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size <= 0 {
			return nil, fmt.Errorf("invalid VECTOR_SIZE value %q", v)
		}
		vectorSize = size
	}

	var esCfg *es.ClientConfig
	if storageType == storage.ES {
		esCfg = &es.ClientConfig{
			IndexName: os.Getenv("ES_INDEX_NAME"),
			Username:  os.Getenv("ES_USERNAME"),
			Password:  os.Getenv("ES_PASSWORD"),
		}
		esCfg.Addresses = utils.SplitNonEmpty(os.Getenv("ES_ADDRESSES"), ",")
		if esCfg.IndexName == "" {
			esCfg.IndexName = collection
		}
		if len(esCfg.Addresses) == 0 {
			slog.Error("Elasticsearch configuration is incomplete", "addresses", esCfg.Addresses)
			return nil, fmt.Errorf("elasticsearch configuration is incomplete: ES_ADDRESSES is missing")
		}
	}

	var pgCfg *pg.PoolConfig
	if storageType == storage.PG {
		pgCfg = &pg.PoolConfig{
			ConnStr: os.Getenv("PG_CONNECTION_STRING"),
		}
		if pgCfg.ConnStr == "" {
			slog.Error("PostgreSQL connection string is not set")
			return nil, fmt.Errorf("PostgreSQL connection string is not set")
		}
		maxConns, err := env.Int("PG_MAX_CONNS", 0)
		if err != nil {
			return nil, err
		}
		minConns, err := env.Int("PG_MIN_CONNS", 0)
		if err != nil {
			return nil, err
		}
		pgCfg.MaxConns = int32(maxConns)
		pgCfg.MinConns = int32(minConns)
	}

	return &StorageConfig{
		Type:              storageType,
		Collection:        collection,
		CompanyCollection: companyCollection,
		VectorSize:        vectorSize,
		Pg:                pgCfg,
		Es:                esCfg,
	}, nil
}
