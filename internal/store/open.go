package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/it-hub-api/pkg/cache"
	"github.com/noah-isme/it-hub-api/pkg/config"
	"github.com/noah-isme/it-hub-api/pkg/database"
)

// Open constructs the backend named by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		backend Backend
		err     error
	)
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		backend = NewMemoryBackend()
	case config.StorageFile, "":
		backend, err = NewFileBackend(cfg.Storage.Dir)
	case config.StorageSQLite:
		db, openErr := database.NewSQLite(cfg.Storage.SQLitePath)
		if openErr != nil {
			return nil, openErr
		}
		backend, err = NewSQLiteBackend(db)
	case config.StoragePostgres:
		db, openErr := database.NewPostgres(ctx, cfg.Database)
		if openErr != nil {
			return nil, openErr
		}
		pg := NewPostgresBackend(db)
		if err = pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, err
		}
		backend = pg
	case config.StorageRedis:
		client, openErr := cache.NewRedis(ctx, cfg.Redis)
		if openErr != nil {
			return nil, openErr
		}
		backend = NewRedisBackend(client)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("storage backend ready", zap.String("driver", cfg.Storage.Driver))
	return backend, nil
}
