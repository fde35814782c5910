package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ghuser/itemstore/migrations/item"
	"github.com/ghuser/itemstore/pkg/config"
	"github.com/ghuser/itemstore/pkg/database"
	"github.com/ghuser/itemstore/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	backend, err := database.BackendFor(cfg.DatabaseURL)
	if err != nil {
		log.Error("invalid DATABASE_URL", "error", err)
		os.Exit(1)
	}
	if backend == database.BackendRedis {
		log.Info("redis backend needs no migrations")
		return
	}

	db, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close() //nolint:errcheck

	applied, err := item.Up(ctx, db)
	if err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied", "backend", backend, "count", len(applied), "files", applied)
}
