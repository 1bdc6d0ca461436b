// Package server exposes the fulfillment router over HTTP
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-voice/backend/config"
	"github.com/pageza/alchemorsel-voice/backend/internal/api"
	"github.com/pageza/alchemorsel-voice/backend/internal/app"
	"github.com/pageza/alchemorsel-voice/backend/internal/fulfillment"
	"github.com/pageza/alchemorsel-voice/backend/internal/middleware"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	logger *zap.Logger
}

// New creates a new server instance around a built App
func New(a *app.App) *Server {
	cfg := a.Config
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(a.Logger, func() any { return fulfillment.Fallback() }),
		middleware.RequestLogger(a.Logger.Named("http")),
		cors.New(corsConfig(cfg.CORSOrigins)),
	)

	router.GET("/health", api.Health)
	router.GET("/metrics", gin.WrapH(a.Metrics.Handler()))

	var turnMiddleware []gin.HandlerFunc
	if cfg.JWTSecret != "" {
		turnMiddleware = append(turnMiddleware, middleware.AuthMiddleware(middleware.NewHMACValidator(cfg.JWTSecret)))
	}
	if a.Redis != nil {
		limiter := middleware.NewFulfillmentRateLimiter(a.Redis, cfg.RateLimitPerMinute, a.Logger.Named("ratelimit"))
		turnMiddleware = append(turnMiddleware, limiter.RateLimitMiddleware())
	}
	api.NewFulfillmentHandler(a.Router, a.Logger).RegisterRoutes(router.Group("/api/v1"), turnMiddleware...)

	return &Server{
		router: router,
		logger: a.Logger,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "Authorization", "Accept", "Origin", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        24 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}
	return c
}

// Handler returns the HTTP handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
