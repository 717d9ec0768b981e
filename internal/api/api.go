// internal/api/api.go
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/supplychain-analytics/internal/api/handlers"
	"github.com/andresuchdata/supplychain-analytics/internal/api/middleware"
	"github.com/andresuchdata/supplychain-analytics/internal/service"
)

type Services struct {
	Metrics *service.MetricsService
	Source  service.DataSource

	// WarehouseCheck, when set, is consulted by the health endpoint.
	WarehouseCheck func(ctx context.Context) error
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
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

	router.GET("/health", healthHandler(services))

	apiGroup := router.Group("/api/v1")

	if services != nil && services.Metrics != nil && services.Source != nil {
		metricsHandler := handlers.NewMetricsHandler(services.Metrics, services.Source)
		metricsGroup := apiGroup.Group("/metrics")
		{
			metricsGroup.GET("", metricsHandler.GetReport)
			metricsGroup.GET("/:group", metricsHandler.GetGroup)
		}

		dashboardGroup := apiGroup.Group("/dashboard")
		{
			dashboardGroup.GET("/summary", metricsHandler.GetDashboardSummary)
		}

		snapshotsGroup := apiGroup.Group("/snapshots")
		{
			snapshotsGroup.GET("", metricsHandler.GetSnapshotHistory)
			snapshotsGroup.GET("/latest", metricsHandler.GetLatestSnapshot)
		}

		apiGroup.POST("/cache/invalidate", metricsHandler.InvalidateCache)
	}

	return router
}

func healthHandler(services *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "ok"}
		code := http.StatusOK

		if services != nil && services.WarehouseCheck != nil {
			if err := services.WarehouseCheck(c.Request.Context()); err != nil {
				status["status"] = "degraded"
				status["warehouse"] = err.Error()
				code = http.StatusServiceUnavailable
			} else {
				status["warehouse"] = "ok"
			}
		}

		c.JSON(code, status)
	}
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
