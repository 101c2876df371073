package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/tokenscope/internal/api"
	"github.com/rickgao/tokenscope/internal/config"
	"github.com/rickgao/tokenscope/internal/database"
	"github.com/rickgao/tokenscope/internal/feed"
	"github.com/rickgao/tokenscope/internal/provider"
)

// openDatabase connects and migrates the catalog database when the config
// needs one. It returns a nil pool otherwise.
func openDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	if !cfg.NeedsDatabase() {
		return nil, nil
	}

	pool, err := database.Connect(ctx, cfg.Database.Catalog)
	if err != nil {
		return nil, err
	}
	if err := database.Schema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to database",
		"host", cfg.Database.Catalog.Host,
		"name", cfg.Database.Catalog.Name,
	)
	return pool, nil
}

// newProvider builds the batch provider selected by the config.
func newProvider(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (provider.Provider, error) {
	pc := cfg.Provider
	switch pc.Kind {
	case config.ProviderMock:
		return provider.NewMock(provider.MockConfig{
			Count:   pc.Count,
			Latency: pc.Latency,
			Seed:    pc.Seed,
		}), nil
	case config.ProviderHTTP:
		return api.NewClient(pc.RestURL, pc.APIKey,
			api.WithTimeout(pc.Timeout),
			api.WithRetries(pc.MaxRetries, time.Second),
			api.WithLogger(logger.With("component", "api")),
		), nil
	case config.ProviderPostgres:
		if pool == nil {
			return nil, fmt.Errorf("postgres provider requires a database connection")
		}
		return database.NewCatalog(pool, logger.With("component", "catalog")), nil
	}
	return nil, fmt.Errorf("unknown provider kind %q", pc.Kind)
}

func feedConfig(cfg *config.Config) feed.Config {
	return feed.Config{
		MinInterval:       cfg.Feed.MinInterval,
		MaxInterval:       cfg.Feed.MaxInterval,
		MaxUpdatesPerTick: cfg.Feed.MaxUpdatesPerTick,
		MaxChange:         cfg.Feed.MaxChange,
		Seed:              cfg.Feed.Seed,
	}
}
