// cmd/api/main.go
package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/supplychain-analytics/internal/api"
	"github.com/andresuchdata/supplychain-analytics/internal/cache"
	"github.com/andresuchdata/supplychain-analytics/internal/config"
	"github.com/andresuchdata/supplychain-analytics/internal/extract"
	"github.com/andresuchdata/supplychain-analytics/internal/metrics"
	"github.com/andresuchdata/supplychain-analytics/internal/service"
	"github.com/andresuchdata/supplychain-analytics/internal/warehouse/postgres"
	"github.com/andresuchdata/supplychain-analytics/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// The warehouse is optional for the API: without it reports are
	// calculated on demand and simply not snapshotted.
	var (
		snapshots      service.SnapshotStore
		warehouseCheck func(ctx context.Context) error
	)
	if db, err := postgres.NewDB(&cfg.Database); err != nil {
		logger.Log.Warn().Err(err).Msg("Warehouse unavailable, running without snapshots")
	} else {
		defer db.Close()
		if err := db.EnsureSchema(context.Background()); err != nil {
			logger.Log.Warn().Err(err).Msg("Warehouse schema setup failed")
		}
		snapshots = postgres.NewSnapshotRepository(db)
		warehouseCheck = db.HealthCheck
	}

	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Report cache unavailable, falling back to noop")
		reportCache = cache.NewNoopReportCache()
	}

	calc := metrics.NewCalculator(calculatorConfig(cfg))
	svc := service.NewMetricsService(calc, reportCache, snapshots, logger.Log)

	router := api.NewRouter(&api.Services{
		Metrics:        svc,
		Source:         buildSource(cfg),
		WarehouseCheck: warehouseCheck,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Str("source", cfg.App.Source).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exited")
}

func buildSource(cfg *config.Config) service.DataSource {
	// The simulator doubles as an inventory fallback for sources that do
	// not publish inventory snapshots.
	sim := extract.NewSimulator(extract.SimulatorOptions{
		OrderCount: cfg.Simulator.OrderCount,
		Days:       cfg.Simulator.Days,
		Rand:       simulatorRand(cfg.Simulator.Seed),
		Logger:     logger.Log,
	})

	switch cfg.App.Source {
	case "workbook":
		reader := extract.NewWorkbookReader(cfg.App.WorkbookPath, logger.Log)
		return extract.NewWorkbookSource(reader, sim)
	case "feed":
		client := extract.NewFeedClient(cfg.Feed.BaseURL, time.Duration(cfg.Feed.TimeoutSeconds)*time.Second, cfg.Feed.MissingDataAlertPct, logger.Log)
		return extract.NewFeedSource(client, sim)
	default:
		return extract.NewSimulatorSource(sim)
	}
}

func calculatorConfig(cfg *config.Config) metrics.Config {
	return metrics.Config{
		LeadTime: metrics.LeadTimeThresholds{
			Excellent: cfg.Metrics.LeadTimeExcellentDays,
			Good:      cfg.Metrics.LeadTimeGoodDays,
		},
		FillRate: metrics.FillRateThresholds{
			Excellent: cfg.Metrics.FillRateExcellent,
			Good:      cfg.Metrics.FillRateGood,
		},
		MaxLeadTimeDays:          cfg.Metrics.MaxLeadTimeDays,
		ReturnProbabilities:      cfg.Metrics.ReturnProbabilities,
		DefaultReturnProbability: cfg.Metrics.DefaultReturnProb,
		Logger:                   logger.Log,
		Rand:                     simulatorRand(cfg.Simulator.Seed),
	}
}

func simulatorRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
