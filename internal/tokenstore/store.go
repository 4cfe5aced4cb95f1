package tokenstore

import (
	"context"
	"fmt"
	"log/slog"

	"positions-console/internal/config"
)

// Store holds the single bearer token of this client. Save overwrites any
// previous value and Clear on an empty store is a no-op.
type Store interface {
	Save(ctx context.Context, token string) error
	Get(ctx context.Context) (string, bool, error)
	Clear(ctx context.Context) error
	Close() error
}

// Open builds the backend selected by TOKEN_STORE.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.TokenStore {
	case config.TokenStoreMemory:
		return NewMemoryStore(), nil
	case config.TokenStoreFile, "":
		var sealer *Sealer
		if cfg.TokenEncryptionKey != "" {
			s, err := NewSealer(cfg.TokenEncryptionKey)
			if err != nil {
				return nil, fmt.Errorf("init token sealer: %w", err)
			}
			sealer = s
		}
		slog.Debug("token store ready", "backend", "file", "path", cfg.TokenFile, "sealed", sealer != nil)
		return NewFileStore(cfg.TokenFile, sealer), nil
	case config.TokenStoreSQLite:
		store, err := OpenSQLiteStore(ctx, cfg.TokenDBPath)
		if err != nil {
			return nil, err
		}
		slog.Debug("token store ready", "backend", "sqlite", "path", cfg.TokenDBPath)
		return store, nil
	case config.TokenStoreRedis:
		store, err := OpenRedisStore(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.RedisTokenKey,
		})
		if err != nil {
			return nil, err
		}
		slog.Debug("token store ready", "backend", "redis", "addr", cfg.RedisAddr)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown token store %q", cfg.TokenStore)
	}
}
