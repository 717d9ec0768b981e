// internal/metrics/calculator.go
//
// The metrics engine is synchronous and pure given its inputs: it never
// fetches data, persists anything, or renders output. The only stochastic
// path is the returns simulation, which draws from the injected random
// source so tests stay deterministic.
package metrics

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/andresuchdata/supplychain-analytics/internal/domain"
)

// LeadTimeThresholds are the day cutoffs for classifying fulfillment delay.
// A lead time <= Excellent days is excellent, <= Good days is good,
// anything beyond is poor.
type LeadTimeThresholds struct {
	Excellent int
	Good      int
}

// FillRateThresholds are ratio cutoffs for classifying per-product fill
// rate. >= Excellent is excellent, >= Good is good, below that is poor.
type FillRateThresholds struct {
	Excellent float64
	Good      float64
}

// Config carries everything the calculators need injected: thresholds,
// simulation probabilities, the logger, and the random source.
type Config struct {
	LeadTime LeadTimeThresholds
	FillRate FillRateThresholds

	// MaxLeadTimeDays is the sanity ceiling; derived lead or cycle times
	// outside [0, MaxLeadTimeDays] are excluded from statistics but counted.
	MaxLeadTimeDays int

	// ReturnProbabilities maps category to simulated return probability;
	// DefaultReturnProbability applies to unlisted categories.
	ReturnProbabilities      map[string]float64
	DefaultReturnProbability float64

	Logger zerolog.Logger
	Rand   *rand.Rand
}

// Calculator computes all supply chain metric groups.
type Calculator struct {
	leadTime    LeadTimeThresholds
	fillRate    FillRateThresholds
	maxLeadDays int
	returnProbs map[string]float64
	defaultProb float64
	logger      zerolog.Logger
	rng         *rand.Rand
}

// NewCalculator builds a Calculator, filling unset config fields with the
// standard defaults (3/7 day lead time cutoffs, 0.95/0.85 fill rate cutoffs,
// 30 day sanity ceiling, 5% default return probability).
func NewCalculator(cfg Config) *Calculator {
	if cfg.LeadTime.Excellent <= 0 {
		cfg.LeadTime.Excellent = 3
	}
	if cfg.LeadTime.Good <= 0 {
		cfg.LeadTime.Good = 7
	}
	if cfg.MaxLeadTimeDays <= 0 {
		cfg.MaxLeadTimeDays = 30
	}
	if cfg.FillRate.Excellent <= 0 {
		cfg.FillRate.Excellent = 0.95
	}
	if cfg.FillRate.Good <= 0 {
		cfg.FillRate.Good = 0.85
	}
	if cfg.DefaultReturnProbability <= 0 {
		cfg.DefaultReturnProbability = 0.05
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(rand.Int63()))
	}

	return &Calculator{
		leadTime:    cfg.LeadTime,
		fillRate:    cfg.FillRate,
		maxLeadDays: cfg.MaxLeadTimeDays,
		returnProbs: cfg.ReturnProbabilities,
		defaultProb: cfg.DefaultReturnProbability,
		logger:      cfg.Logger,
		rng:         cfg.Rand,
	}
}

// CalculateAll runs every calculator and collects the results into one
// report. Each group runs in isolation: a panic inside one calculator is
// logged and leaves that group absent without aborting the siblings.
func (c *Calculator) CalculateAll(orders []domain.OrderRecord, inventory []domain.InventoryRecord, returns domain.ReturnsInput) Report {
	c.logger.Info().
		Int("orders", len(orders)).
		Int("inventory", len(inventory)).
		Msg("calculating all supply chain metrics")

	var report Report

	c.runGroup("lead_time", func() {
		report.LeadTime = c.LeadTimeMetrics(orders)
	})
	c.runGroup("order_cycle", func() {
		report.OrderCycle = c.OrderCycleMetrics(orders)
	})
	c.runGroup("inventory_turnover", func() {
		report.InventoryTurnover = c.InventoryTurnoverMetrics(inventory)
	})
	c.runGroup("fill_rate", func() {
		report.FillRate = c.FillRateMetrics(inventory)
	})
	c.runGroup("category_performance", func() {
		report.CategoryPerformance = c.CategoryPerformanceMetrics(orders, inventory)
	})
	c.runGroup("returns", func() {
		report.Returns = c.ReturnMetrics(orders, returns)
	})

	return report
}

// runGroup isolates a single calculator so an unexpected failure omits that
// metric group instead of taking the whole report down.
func (c *Calculator) runGroup(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().
				Str("group", name).
				Interface("error", r).
				Msg("metric calculation failed, omitting group")
		}
	}()
	fn()
}
