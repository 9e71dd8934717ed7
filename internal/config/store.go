package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quicktrack-app/server/internal/store"
)

// SetupStore initializes the backing key-value store. With no Redis address
// configured it falls back to the in-memory store, which keeps data only for
// the lifetime of the process.
func SetupStore(ctx context.Context, cfg *Config) (store.Store, error) {
	if cfg.Redis.Addr == "" {
		slog.Warn("REDIS_ADDR not set, using in-memory store")
		return store.NewMemory(), nil
	}

	st, err := store.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to set up store: %w", err)
	}
	return st, nil
}
