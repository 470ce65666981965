// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saai/forecast-backend/internal/alerting"
	"github.com/saai/forecast-backend/internal/api"
	"github.com/saai/forecast-backend/internal/cache"
	"github.com/saai/forecast-backend/internal/config"
	"github.com/saai/forecast-backend/internal/repository/postgres"
	"github.com/saai/forecast-backend/internal/service"
	"github.com/saai/forecast-backend/internal/storage"
	"github.com/saai/forecast-backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize prediction cache (falls back to noop when disabled)
	predictionCache, err := cache.NewPredictionCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, serving without it")
		predictionCache = cache.NewNoopPredictionCache()
	}

	// Initialize model store
	objectStore, err := storage.NewMinioClient(cfg.ModelStore)
	if err != nil {
		log.Fatalf("Failed to connect to model store: %v", err)
	}
	modelStore := storage.NewModelStore(objectStore)

	// Alert sink shares the cache's redis instance; the API still serves
	// predictions when it is unreachable.
	var sink alerting.AlertSink = alerting.NoopSink{}
	if redisClient, _, err := cache.NewRedisClient(cfg.Cache); err != nil {
		logger.Log.Warn().Err(err).Msg("Redis unavailable, alerts will not be published")
	} else {
		sink = alerting.NewRedisSink(redisClient, cfg.Alerts.Channel)
	}

	// Initialize services
	forecastService := service.NewForecastService(
		postgres.NewSalesRepository(db.DB),
		postgres.NewProductRepository(db.DB),
		postgres.NewPredictionRepository(db),
		postgres.NewNotificationRepository(db),
		predictionCache,
		modelStore,
		sink,
		cfg.Forecast,
	)

	// Initialize HTTP server
	router := api.NewRouter(forecastService, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
