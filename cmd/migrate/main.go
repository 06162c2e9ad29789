package main

// Apply document store migrations:
//   go run ./cmd/migrate

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"news-classifier/internal/shared/config"
	"news-classifier/internal/shared/storage/db"
	"news-classifier/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	logger, err := telemetry.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions(), logger)
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts, logger)
	if err != nil {
		logger.Error("failed to connect database", zap.Error(err))
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB, logger); err != nil {
		logger.Error("failed to run migrations", zap.Error(err))
		sqlDB.Close()
		os.Exit(1)
	}
	logger.Info("migrations applied")
}
