package storage

import (
	"fmt"

	"github.com/topfiveapp/topfive/internal/config"
)

// NewBackend creates a storage backend based on the configuration.
func NewBackend(cfg *config.StorageConfig) (Backend, error) {
	switch cfg.Mode {
	case config.StorageModeRedis, "":
		return NewRedisBackend(RedisConfig{
			URL:      cfg.Redis.URL,
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	case config.StorageModeSQLite:
		path := cfg.SQLite.Path
		if path == "" {
			path = "topfive.db"
		}
		return NewSQLiteBackend(path)
	case config.StorageModeMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage mode: %s", cfg.Mode)
	}
}
