// cmd/pipeline/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/supplychain-analytics/internal/cache"
	"github.com/andresuchdata/supplychain-analytics/internal/config"
	"github.com/andresuchdata/supplychain-analytics/internal/extract"
	"github.com/andresuchdata/supplychain-analytics/internal/metrics"
	"github.com/andresuchdata/supplychain-analytics/internal/service"
	"github.com/andresuchdata/supplychain-analytics/internal/storage"
	"github.com/andresuchdata/supplychain-analytics/internal/warehouse/postgres"
	"github.com/andresuchdata/supplychain-analytics/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "pipeline",
		Usage: "Run the supply chain data integration pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetLevel(c.String("log-level"))
			if path := config.Load().App.LogFile; path != "" {
				// The file stays open for the process lifetime.
				if _, err := logger.WithFile(path); err != nil {
					return fmt.Errorf("failed to open log file %s: %w", path, err)
				}
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Extract, calculate and load the full pipeline",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "source",
						Usage:   "Data source (workbook, feed, demo)",
						EnvVars: []string{"APP_SOURCE"},
					},
					&cli.StringFlag{
						Name:    "workbook",
						Usage:   "Path to the source XLSX workbook",
						EnvVars: []string{"APP_WORKBOOK_PATH"},
					},
					&cli.BoolFlag{
						Name:  "skip-warehouse",
						Usage: "Calculate metrics without loading the warehouse",
					},
					&cli.Int64Flag{
						Name:    "seed",
						Usage:   "Random seed for simulation (0 uses the clock)",
						EnvVars: []string{"SIM_SEED"},
					},
				},
				Action: runPipeline,
			},
			{
				Name:  "demo",
				Usage: "Calculate metrics over generated sample data",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "Random seed for sample data (0 uses the clock)",
					},
				},
				Action: runDemo,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("Pipeline failed")
	}
}

func runPipeline(c *cli.Context) error {
	cfg := config.Load()
	ctx := c.Context

	sourceName := c.String("source")
	if sourceName == "" {
		sourceName = cfg.App.Source
	}
	workbookPath := c.String("workbook")
	if workbookPath == "" {
		workbookPath = cfg.App.WorkbookPath
	}

	if sourceName == "workbook" && cfg.Storage.Enabled {
		if err := fetchWorkbook(ctx, cfg, workbookPath); err != nil {
			return fmt.Errorf("workbook fetch failed: %w", err)
		}
	}

	src := buildSource(cfg, sourceName, workbookPath, c.Int64("seed"))

	logger.Log.Info().Str("source", src.Name()).Msg("Starting pipeline run")

	ds, err := src.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	logDataSummary(ds)

	var snapshots service.SnapshotStore
	if !c.Bool("skip-warehouse") {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return fmt.Errorf("warehouse connection failed: %w", err)
		}
		defer db.Close()

		if err := db.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("warehouse schema setup failed: %w", err)
		}

		loader := postgres.NewLoader(db, logger.Log)
		if err := loader.LoadOrders(ctx, ds.Orders); err != nil {
			return err
		}
		if err := loader.LoadInventory(ctx, ds.Inventory); err != nil {
			return err
		}
		if returns, ok := ds.Returns.Real(); ok {
			if err := loader.LoadReturns(ctx, returns); err != nil {
				return err
			}
		}
		snapshots = postgres.NewSnapshotRepository(db)
	}

	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Report cache unavailable, falling back to noop")
		reportCache = cache.NewNoopReportCache()
	}

	calc := metrics.NewCalculator(calculatorConfig(cfg, c.Int64("seed")))
	svc := service.NewMetricsService(calc, reportCache, snapshots, logger.Log)

	report, err := svc.Report(ctx, src.Name(), ds)
	if err != nil {
		return err
	}
	logMetricsSummary(report)

	if sourceName == "feed" {
		compareFeedAnalytics(ctx, cfg, report)
	}

	if cfg.Storage.Enabled {
		if err := exportReport(ctx, cfg, src.Name(), report); err != nil {
			logger.Log.Warn().Err(err).Msg("Report export upload failed")
		}
	}

	logger.Log.Info().Msg("Pipeline run completed")
	return nil
}

func runDemo(c *cli.Context) error {
	cfg := config.Load()

	sim := extract.NewSimulator(extract.SimulatorOptions{
		OrderCount: cfg.Simulator.OrderCount,
		Days:       cfg.Simulator.Days,
		Rand:       newRand(c.Int64("seed")),
		Logger:     logger.Log,
	})
	ds := sim.Dataset()
	logDataSummary(ds)

	calc := metrics.NewCalculator(calculatorConfig(cfg, c.Int64("seed")))
	svc := service.NewMetricsService(calc, cache.NewNoopReportCache(), nil, logger.Log)

	report, err := svc.Report(c.Context, "demo", ds)
	if err != nil {
		return err
	}
	logMetricsSummary(report)

	logger.Log.Info().Msg("Demo run completed")
	return nil
}

func storageClient(cfg *config.Config) (*storage.MinioClient, error) {
	return storage.NewMinioClient(storage.MinioConfig{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
	})
}

// fetchWorkbook downloads the newest workbook object into the local path
// the reader expects.
func fetchWorkbook(ctx context.Context, cfg *config.Config, destPath string) error {
	client, err := storageClient(cfg)
	if err != nil {
		return err
	}

	objects, err := client.ListObjects(ctx, filepath.Base(destPath))
	if err != nil {
		return err
	}
	if len(objects) == 0 {
		return fmt.Errorf("no workbook object found in bucket %s", cfg.Storage.Bucket)
	}

	logger.Log.Info().Str("key", objects[0].Key).Str("dest", destPath).Msg("Downloading workbook")
	return client.DownloadObject(ctx, objects[0].Key, destPath)
}

// exportReport uploads the calculated report as a JSON object so other
// consumers can pick it up from the bucket.
func exportReport(ctx context.Context, cfg *config.Config, source string, report *metrics.Report) error {
	client, err := storageClient(cfg)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report export: %w", err)
	}

	key := reportExportKey(source, time.Now().UTC())
	if err := client.UploadObject(ctx, key, payload); err != nil {
		return err
	}
	logger.Log.Info().Str("key", key).Int("bytes", len(payload)).Msg("Report export uploaded")
	return nil
}

func reportExportKey(source string, now time.Time) string {
	return fmt.Sprintf("reports/%s_%s.json", source, now.Format("20060102T150405Z"))
}

// compareFeedAnalytics logs the feed's own rollup next to the locally
// calculated report so drift between the two shows up in operator logs.
func compareFeedAnalytics(ctx context.Context, cfg *config.Config, report *metrics.Report) {
	client := extract.NewFeedClient(cfg.Feed.BaseURL, time.Duration(cfg.Feed.TimeoutSeconds)*time.Second, cfg.Feed.MissingDataAlertPct, logger.Log)
	analytics, err := client.Analytics(ctx)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Feed analytics unavailable")
		return
	}

	event := logger.Log.Info()
	if summary, ok := analytics["summary"].(map[string]any); ok {
		if total, ok := summary["total_orders"].(float64); ok {
			event = event.Int("feed_total_orders", int(total))
		}
		if sales, ok := summary["total_sales"].(float64); ok {
			event = event.Float64("feed_total_sales", sales)
		}
	}
	if report.LeadTime != nil {
		event = event.Int("calculated_orders", report.LeadTime.TotalOrders)
	}
	event.Msg("Feed analytics comparison")
}

func buildSource(cfg *config.Config, name, workbookPath string, seed int64) service.DataSource {
	// The simulator doubles as an inventory fallback for sources that do
	// not publish inventory snapshots.
	sim := extract.NewSimulator(extract.SimulatorOptions{
		OrderCount: cfg.Simulator.OrderCount,
		Days:       cfg.Simulator.Days,
		Rand:       newRand(seed),
		Logger:     logger.Log,
	})

	switch name {
	case "workbook":
		return extract.NewWorkbookSource(extract.NewWorkbookReader(workbookPath, logger.Log), sim)
	case "feed":
		client := extract.NewFeedClient(cfg.Feed.BaseURL, time.Duration(cfg.Feed.TimeoutSeconds)*time.Second, cfg.Feed.MissingDataAlertPct, logger.Log)
		return extract.NewFeedSource(client, sim)
	default:
		return extract.NewSimulatorSource(sim)
	}
}

func calculatorConfig(cfg *config.Config, seed int64) metrics.Config {
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
		Rand:                     newRand(seed),
	}
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func logDataSummary(ds extract.Dataset) {
	event := logger.Log.Info().
		Int("orders", len(ds.Orders)).
		Int("inventory_rows", len(ds.Inventory)).
		Int("people", len(ds.People))
	if returns, ok := ds.Returns.Real(); ok {
		event = event.Int("returns", len(returns))
	} else {
		event = event.Str("returns", "absent")
	}
	event.Msg("Data extraction summary")
}

func logMetricsSummary(report *metrics.Report) {
	if report.LeadTime != nil {
		logger.Log.Info().
			Float64("mean_days", report.LeadTime.Mean).
			Int("orders", report.LeadTime.TotalOrders).
			Msg("Lead time calculated")
	}
	if report.FillRate != nil {
		logger.Log.Info().
			Float64("mean", report.FillRate.MeanFillRate).
			Int("products_at_risk", report.FillRate.ProductsAtRisk).
			Msg("Fill rate calculated")
	}
	if report.Returns != nil {
		logger.Log.Info().
			Float64("return_rate", report.Returns.ReturnRate).
			Bool("simulated", report.Returns.Simulated).
			Msg("Returns calculated")
	}
	if report.CategoryPerformance != nil && report.CategoryPerformance.TopSales != nil {
		logger.Log.Info().
			Str("category", report.CategoryPerformance.TopSales.Category).
			Float64("total_sales", report.CategoryPerformance.TopSales.Value).
			Msg("Top sales category")
	}
}
