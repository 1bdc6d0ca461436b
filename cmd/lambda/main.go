package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-voice/backend/config"
	"github.com/pageza/alchemorsel-voice/backend/internal/app"
	"github.com/pageza/alchemorsel-voice/backend/internal/fulfillment"
	"github.com/pageza/alchemorsel-voice/backend/internal/logger"
	"github.com/pageza/alchemorsel-voice/backend/internal/types"
)

// handler always answers with an envelope; a malformed event gets the
// fallback response so the front end never sees an invocation error.
func handler(router *fulfillment.Router) func(context.Context, json.RawMessage) (types.Response, error) {
	return func(ctx context.Context, event json.RawMessage) (types.Response, error) {
		resp, _ := router.HandleRaw(ctx, event)
		return resp, nil
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	defer func() { _ = zl.Sync() }()

	a, err := app.Build(context.Background(), cfg, zl)
	if err != nil {
		zl.Fatal("failed to build application", zap.Error(err))
	}

	lambda.Start(handler(a.Router))
}
