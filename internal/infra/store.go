package infra

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rosterdesk/platform/internal/datastore"
	"github.com/rosterdesk/platform/internal/repository"
)

// OpenStore connects the data store selected by DATA_STORE.
func OpenStore(ctx context.Context, cfg *Config, logger *slog.Logger) (datastore.Store, error) {
	switch cfg.DataStore {
	case StorePostgres:
		if cfg.RunMigrations {
			if err := RunMigrations(cfg.DSN(), logger); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		pool, err := NewPostgresPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to postgres", "max_conns", cfg.PGMaxConns)
		return datastore.NewPostgres(pool), nil

	case StorePostgREST:
		store := datastore.NewPostgREST(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseTimeout)
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("ping postgrest: %w", err)
		}
		logger.Info("connected to postgrest", "url", cfg.SupabaseURL)
		return store, nil

	case StoreMemory:
		mem := datastore.NewMemory()
		repository.RegisterMemoryFunctions(mem)
		logger.Warn("using in-memory data store; data is lost on restart")
		return mem, nil
	}
	return nil, fmt.Errorf("unknown data store %q", cfg.DataStore)
}
