// Command migrate prepares the configured profile store: it creates the
// DynamoDB table or migrates the SQL tables.
package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-voice/backend/config"
	"github.com/pageza/alchemorsel-voice/backend/internal/database"
	"github.com/pageza/alchemorsel-voice/backend/internal/logger"
	"github.com/pageza/alchemorsel-voice/backend/internal/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zl := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Development: !cfg.IsProduction()})
	defer func() { _ = zl.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	switch cfg.ProfileStore {
	case config.StoreDynamoDB:
		client, err := config.NewDynamoDBClient(ctx, cfg)
		if err != nil {
			zl.Fatal("failed to create dynamodb client", zap.Error(err))
		}
		if err := store.EnsureTable(ctx, client, cfg.UserTableName); err != nil {
			zl.Fatal("failed to create profile table", zap.Error(err))
		}
		zl.Info("profile table ready", zap.String("table", cfg.UserTableName))
	default:
		db, err := database.New(cfg, zl)
		if err != nil {
			zl.Fatal("failed to connect to database", zap.Error(err))
		}
		if err := database.RunMigrations(db); err != nil {
			zl.Fatal("failed to run migrations", zap.Error(err))
		}
		zl.Info("profile tables migrated")
	}
}
