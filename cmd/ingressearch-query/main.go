package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dimitrije/ingressearch-api/internal/config"
	"github.com/dimitrije/ingressearch-api/internal/database"
	"github.com/dimitrije/ingressearch-api/internal/services"
	"github.com/dimitrije/ingressearch-api/internal/store"
)

func main() {
	if err := newRootCmd(openPostgres).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openPostgres wires the search services onto the configured database. The
// in-memory store is per process, so this tool only reads Postgres.
func openPostgres(ctx context.Context) (*backend, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Store != config.StorePostgres {
		return nil, nil, fmt.Errorf("STORE=%s is not shared between processes; use postgres", cfg.Store)
	}

	db, err := database.New(ctx, cfg.DatabaseURL, 2)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	logger := config.NewLogger(cfg, os.Stderr)
	st := store.NewPostgres(db)
	executor := services.NewExecutor(st, nil)

	return &backend{
		searches:      services.NewSearchService(executor, nil, logger),
		savedSearches: services.NewSavedSearchService(st, executor, nil, logger),
	}, db.Close, nil
}
