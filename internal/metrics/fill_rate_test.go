package metrics

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/andresuchdata/supplychain-analytics/internal/domain"
)

func TestFillRateMetricsEmptyInput(t *testing.T) {
	calc := newTestCalculator(1)
	if got := calc.FillRateMetrics(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %+v", got)
	}
}

func TestFillRateClassificationBoundaries(t *testing.T) {
	calc := newTestCalculator(1)
	inventory := []domain.InventoryRecord{
		invRecord("P1", 1, 10, 1, 5, 0.95, false), // exactly excellent cutoff
		invRecord("P2", 1, 10, 1, 5, 0.85, false), // exactly good cutoff
		invRecord("P3", 1, 10, 1, 5, 0.84, false), // below good
		invRecord("P4", 1, 10, 1, 5, 1.00, false),
	}

	got := calc.FillRateMetrics(inventory)
	if got == nil {
		t.Fatal("expected metrics, got nil")
	}
	if !floatEq(got.ExcellentPct, 0.5) {
		t.Errorf("ExcellentPct = %v, want 0.5 (0.95 is excellent)", got.ExcellentPct)
	}
	if !floatEq(got.GoodPct, 0.25) {
		t.Errorf("GoodPct = %v, want 0.25 (0.85 is good, not poor)", got.GoodPct)
	}
	if !floatEq(got.PoorPct, 0.25) {
		t.Errorf("PoorPct = %v, want 0.25", got.PoorPct)
	}
	sum := got.ExcellentPct + got.GoodPct + got.PoorPct
	if !floatEq(sum, 1.0) {
		t.Errorf("percentages sum to %v, want 1.0", sum)
	}
}

func TestFillRateAveragesPerProduct(t *testing.T) {
	calc := newTestCalculator(1)
	inventory := []domain.InventoryRecord{
		invRecord("P1", 1, 10, 1, 5, 0.80, false),
		invRecord("P1", 2, 10, 1, 5, 1.00, false), // P1 mean 0.90
		invRecord("P2", 1, 10, 1, 5, 0.70, false),
	}

	got := calc.FillRateMetrics(inventory)
	if got == nil {
		t.Fatal("expected metrics, got nil")
	}
	if got.TotalProducts != 2 {
		t.Errorf("TotalProducts = %d, want 2", got.TotalProducts)
	}
	if !floatEq(got.MeanFillRate, 0.80) {
		t.Errorf("MeanFillRate = %v, want 0.80 over per-product means", got.MeanFillRate)
	}
	// P1 mean 0.90 classifies good even though one observation was 1.00.
	if !floatEq(got.GoodPct, 0.5) {
		t.Errorf("GoodPct = %v, want 0.5", got.GoodPct)
	}
}

func TestFillRateProductsAtRisk(t *testing.T) {
	calc := newTestCalculator(1)
	inventory := []domain.InventoryRecord{
		invRecord("P1", 1, 10, 1, 5, 0.9, false),
		invRecord("P1", 2, 10, 1, 5, 0.9, true), // one risky observation flags the product
		invRecord("P2", 1, 10, 1, 5, 0.9, false),
		invRecord("P3", 1, 10, 1, 5, 0.9, true),
	}

	got := calc.FillRateMetrics(inventory)
	if got == nil {
		t.Fatal("expected metrics, got nil")
	}
	if got.ProductsAtRisk != 2 {
		t.Errorf("ProductsAtRisk = %d, want 2", got.ProductsAtRisk)
	}
	want := 2.0 / 3.0
	if !floatEq(got.RiskPercentage, want) {
		t.Errorf("RiskPercentage = %v, want %v", got.RiskPercentage, want)
	}
}

func TestFillRateConfigurableThresholds(t *testing.T) {
	calc := NewCalculator(Config{
		FillRate: FillRateThresholds{Excellent: 0.99, Good: 0.5},
		Logger:   zerolog.Nop(),
	})

	inventory := []domain.InventoryRecord{
		invRecord("P1", 1, 10, 1, 5, 0.95, false),
	}
	got := calc.FillRateMetrics(inventory)
	if got == nil {
		t.Fatal("expected metrics, got nil")
	}
	if !floatEq(got.GoodPct, 1.0) {
		t.Errorf("GoodPct = %v, want 1.0 with relaxed thresholds", got.GoodPct)
	}
}
