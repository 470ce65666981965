// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saai/forecast-backend/internal/api/handlers"
	"github.com/saai/forecast-backend/internal/service"
)

func NewRouter(forecastService *service.ForecastService, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Tenant-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api/v1")

	predictionHandler := handlers.NewPredictionHandler(forecastService)
	predictionGroup := apiGroup.Group("/predictions")
	{
		predictionGroup.POST("", predictionHandler.PredictDemand)
		predictionGroup.GET("", predictionHandler.ListPredictions)
		predictionGroup.GET("/:code", predictionHandler.GetPrediction)
		predictionGroup.GET("/:code/alert", predictionHandler.GetAlertPreview)
	}
	apiGroup.GET("/notifications", predictionHandler.ListNotifications)

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	normalized := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			return nil, true
		}
		normalized = append(normalized, strings.TrimSuffix(origin, "/"))
	}
	return normalized, false
}
