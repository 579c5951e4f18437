package app

import (
	"context"
	"fmt"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/semla/internal/storage"
	"github.com/shrimpsizemoose/semla/internal/store"
	"github.com/shrimpsizemoose/semla/internal/store/postgres"
	"github.com/shrimpsizemoose/semla/internal/store/sqlite"
)

func NewStore(dsn, migrationsDir string) (store.SubmissionStore, error) {
	switch dbType := store.DetectType(dsn); dbType {
	case store.DBTypePostgres:
		s, err := postgres.NewPostgresStore(dsn, migrationsDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case store.DBTypeSQLite:
		s, err := sqlite.NewSQLiteStore(dsn, migrationsDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unable to determine database type from DSN: %s", dsn)
	}
}

// NewObjectStore returns a nil store when no backend is configured; uploads
// then fail with a storage failure instead of crashing the server.
func NewObjectStore(ctx context.Context, config *Config) (storage.ObjectStore, error) {
	switch config.Storage.Backend {
	case StorageBackendS3:
		s, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    config.Storage.Bucket,
			Endpoint:  config.Storage.Endpoint,
			Region:    config.Storage.Region,
			AccessKey: config.Storage.AccessKey,
			SecretKey: config.Storage.SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case StorageBackendMemory:
		logger.Info.Println("Using in-memory object storage, uploads will not survive a restart")
		return storage.NewMemoryStore(config.Storage.PublicURL), nil
	case "":
		logger.Info.Println("Object storage is not configured, uploads are disabled")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", config.Storage.Backend)
	}
}
