package repository

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"kata_lens/internal/config"
)

// StoreHandle is an opened KVStore together with its health check and cleanup.
type StoreHandle struct {
	KVStore
	Ping  func(ctx context.Context) error
	Close func() error
}

// OpenStore opens the KVStore selected by cfg.Storage.Driver. Relational
// drivers are migrated before the handle is returned.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*StoreHandle, error) {
	switch cfg.Storage.Driver {
	case config.DriverRedis:
		if cfg.Redis.URL == "" {
			return nil, fmt.Errorf("storage driver %q needs redis.url (REDIS_URL)", cfg.Storage.Driver)
		}
		store, err := NewRedisKVStore(ctx, cfg.Redis.URL, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Using redis key-value store")
		return &StoreHandle{KVStore: store, Ping: store.Ping, Close: store.Close}, nil

	case config.DriverSQLite, config.DriverPostgres:
		dsn := cfg.Database.URL
		if cfg.Storage.Driver == config.DriverSQLite {
			dsn = cfg.Storage.SQLitePath
			if dir := filepath.Dir(dsn); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("create sqlite directory: %w", err)
				}
			}
		}
		if dsn == "" {
			return nil, fmt.Errorf("storage driver %q needs database.url (DATABASE_URL)", cfg.Storage.Driver)
		}

		db, err := NewDB(cfg.Storage.Driver, dsn, logger)
		if err != nil {
			return nil, err
		}
		if err := Migrate(db); err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		return &StoreHandle{
			KVStore: NewGormKVStore(db, logger),
			Ping:    sqlDB.PingContext,
			Close:   sqlDB.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
