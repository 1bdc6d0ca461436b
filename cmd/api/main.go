package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-voice/backend/config"
	"github.com/pageza/alchemorsel-voice/backend/internal/app"
	"github.com/pageza/alchemorsel-voice/backend/internal/logger"
	"github.com/pageza/alchemorsel-voice/backend/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: !cfg.IsProduction(),
	})
	defer func() { _ = zl.Sync() }()

	a, err := app.Build(context.Background(), cfg, zl)
	if err != nil {
		zl.Fatal("failed to build application", zap.Error(err))
	}
	defer a.Close()

	srv := server.New(a)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			zl.Error("server error", zap.Error(err))
			return
		}
	case sig := <-quit:
		zl.Info("received signal", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("server shutdown error", zap.Error(err))
		return
	}
	zl.Info("server stopped")
}
