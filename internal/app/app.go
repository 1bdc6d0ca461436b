// Package app wires configuration into the fulfillment router and the
// infrastructure behind it. Both the HTTP server and the Lambda entry point
// build on App.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-voice/backend/config"
	"github.com/pageza/alchemorsel-voice/backend/internal/database"
	"github.com/pageza/alchemorsel-voice/backend/internal/fulfillment"
	"github.com/pageza/alchemorsel-voice/backend/internal/metrics"
	"github.com/pageza/alchemorsel-voice/backend/internal/service"
	"github.com/pageza/alchemorsel-voice/backend/internal/spoonacular"
	"github.com/pageza/alchemorsel-voice/backend/internal/store"
)

const (
	upstreamTimeout = 10 * time.Second
	cachePrefix     = "spoonacular:"
)

// App holds the wired dependencies of one process
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Router  *fulfillment.Router

	// Redis is nil when REDIS_URL is unset or unreachable
	Redis *redis.Client

	db *gorm.DB
}

// Build connects the profile store and the optional redis cache. A profile
// store that cannot be reached is logged and left out: the router then
// answers profile updates with "can't connect" and reads default profiles.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger, Metrics: metrics.New()}

	if cfg.RedisURL != "" {
		client, err := database.NewRedisClient(ctx, cfg.RedisURL, logger)
		if err != nil {
			logger.Warn("redis unavailable, continuing without cache and rate limiting", zap.Error(err))
		} else {
			a.Redis = client
		}
	}

	profileStore, err := a.buildStore(ctx)
	if err != nil {
		logger.Error("profile store unavailable", zap.String("store", cfg.ProfileStore), zap.Error(err))
	}

	opts := spoonacular.Options{
		APIKey:     cfg.SpoonacularAPIKey,
		BaseURL:    cfg.SpoonacularBaseURL,
		HTTPClient: &http.Client{Timeout: upstreamTimeout},
		CacheTTL:   cfg.CacheTTL,
		Logger:     logger.Named("spoonacular"),
		Metrics:    a.Metrics,
	}
	if a.Redis != nil {
		opts.Cache = spoonacular.NewRedisCache(a.Redis, cachePrefix)
	}
	if cfg.SpoonacularAPIKey == "" {
		logger.Warn("SPOONACULAR_API_KEY is not set; recipe intents will report missing configuration")
	}

	a.Router = fulfillment.NewRouter(fulfillment.Deps{
		Profiles:          service.NewProfileService(profileStore, logger.Named("profiles"), a.Metrics),
		Recipes:           spoonacular.NewClient(opts),
		Logger:            logger.Named("fulfillment"),
		Metrics:           a.Metrics,
		SearchResultCount: cfg.SearchResultCount,
	})
	return a, nil
}

func (a *App) buildStore(ctx context.Context) (store.ProfileStore, error) {
	switch a.Config.ProfileStore {
	case config.StoreDynamoDB:
		client, err := config.NewDynamoDBClient(ctx, a.Config)
		if err != nil {
			return nil, err
		}
		a.Logger.Info("using dynamodb profile store", zap.String("table", a.Config.UserTableName))
		return store.NewDynamoStore(client, a.Config.UserTableName), nil
	case config.StorePostgres, config.StoreSQLite:
		db, err := database.New(a.Config, a.Logger)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(db); err != nil {
			return nil, fmt.Errorf("migrate profile tables: %w", err)
		}
		a.db = db
		return store.NewGormStore(db), nil
	default:
		return nil, fmt.Errorf("unknown profile store %q", a.Config.ProfileStore)
	}
}

// Close releases connections opened by Build
func (a *App) Close() error {
	var firstErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			firstErr = err
		}
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
