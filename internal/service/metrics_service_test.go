package service

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/andresuchdata/supplychain-analytics/internal/cache"
	"github.com/andresuchdata/supplychain-analytics/internal/domain"
	"github.com/andresuchdata/supplychain-analytics/internal/extract"
	"github.com/andresuchdata/supplychain-analytics/internal/metrics"
)

type fakeSnapshotStore struct {
	saved  map[string]*metrics.Report
	failed bool
}

func (f *fakeSnapshotStore) Save(ctx context.Context, source string, report *metrics.Report) error {
	if f.failed {
		return errors.New("store down")
	}
	if f.saved == nil {
		f.saved = map[string]*metrics.Report{}
	}
	f.saved[source] = report
	return nil
}

func (f *fakeSnapshotStore) Latest(ctx context.Context, source string) (*metrics.Report, error) {
	if f.failed {
		return nil, errors.New("store down")
	}
	return f.saved[source], nil
}

func (f *fakeSnapshotStore) History(ctx context.Context, source string, limit int) ([]domain.SnapshotInfo, error) {
	if f.failed {
		return nil, errors.New("store down")
	}
	history := []domain.SnapshotInfo{}
	if _, ok := f.saved[source]; ok {
		history = append(history, domain.SnapshotInfo{ID: 1, Source: source, CreatedAt: time.Now()})
	}
	if limit > 0 && limit < len(history) {
		history = history[:limit]
	}
	return history, nil
}

type fakeSource struct {
	name string
	ds   extract.Dataset
	err  error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context) (extract.Dataset, error) {
	return f.ds, f.err
}

func testDataset() extract.Dataset {
	sim := extract.NewSimulator(extract.SimulatorOptions{
		Rand:   rand.New(rand.NewSource(7)),
		Logger: zerolog.Nop(),
	})
	return sim.Dataset()
}

func newTestService(store SnapshotStore) *MetricsService {
	calc := metrics.NewCalculator(metrics.Config{
		Logger: zerolog.Nop(),
		Rand:   rand.New(rand.NewSource(7)),
	})
	return NewMetricsService(calc, cache.NewNoopReportCache(), store, zerolog.Nop())
}

func TestMetricsServiceReport(t *testing.T) {
	store := &fakeSnapshotStore{}
	svc := newTestService(store)

	report, err := svc.Report(context.Background(), "demo", testDataset())
	if err != nil {
		t.Fatalf("Report() error: %v", err)
	}
	if report.LeadTime == nil || report.FillRate == nil || report.Returns == nil {
		t.Error("expected a fully populated report from the demo dataset")
	}
	if store.saved["demo"] != report {
		t.Error("report not persisted to the snapshot store")
	}
}

func TestMetricsServiceReportSurvivesSnapshotFailure(t *testing.T) {
	svc := newTestService(&fakeSnapshotStore{failed: true})

	report, err := svc.Report(context.Background(), "demo", testDataset())
	if err != nil {
		t.Fatalf("Report() error: %v", err)
	}
	if report == nil {
		t.Fatal("snapshot failure must not lose the report")
	}
}

func TestMetricsServiceRunSource(t *testing.T) {
	svc := newTestService(nil)

	t.Run("success", func(t *testing.T) {
		report, err := svc.RunSource(context.Background(), &fakeSource{name: "feed", ds: testDataset()})
		if err != nil {
			t.Fatalf("RunSource() error: %v", err)
		}
		if report.LeadTime == nil {
			t.Error("expected lead time metrics")
		}
	})

	t.Run("extraction failure", func(t *testing.T) {
		_, err := svc.RunSource(context.Background(), &fakeSource{name: "feed", err: errors.New("connection refused")})
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "feed") {
			t.Errorf("error %q should name the source", err)
		}
	})
}

func TestMetricsServiceLatestReport(t *testing.T) {
	store := &fakeSnapshotStore{}
	svc := newTestService(store)

	if _, err := svc.Report(context.Background(), "demo", testDataset()); err != nil {
		t.Fatalf("Report() error: %v", err)
	}

	report, err := svc.LatestReport(context.Background(), "demo")
	if err != nil {
		t.Fatalf("LatestReport() error: %v", err)
	}
	if report == nil {
		t.Error("expected the persisted report")
	}

	t.Run("no store configured", func(t *testing.T) {
		if _, err := newTestService(nil).LatestReport(context.Background(), "demo"); !errors.Is(err, ErrNoSnapshotStore) {
			t.Errorf("err = %v, want ErrNoSnapshotStore", err)
		}
	})
}

func TestMetricsServiceReportHistory(t *testing.T) {
	store := &fakeSnapshotStore{}
	svc := newTestService(store)

	if _, err := svc.Report(context.Background(), "demo", testDataset()); err != nil {
		t.Fatalf("Report() error: %v", err)
	}

	history, err := svc.ReportHistory(context.Background(), "demo", 10)
	if err != nil {
		t.Fatalf("ReportHistory() error: %v", err)
	}
	if len(history) != 1 || history[0].Source != "demo" {
		t.Errorf("history = %+v, want one entry for demo", history)
	}

	t.Run("no store configured", func(t *testing.T) {
		if _, err := newTestService(nil).ReportHistory(context.Background(), "demo", 10); !errors.Is(err, ErrNoSnapshotStore) {
			t.Errorf("err = %v, want ErrNoSnapshotStore", err)
		}
	})
}

func TestBuildDashboardSummary(t *testing.T) {
	svc := newTestService(nil)
	report, err := svc.Report(context.Background(), "demo", testDataset())
	if err != nil {
		t.Fatalf("Report() error: %v", err)
	}

	summary := BuildDashboardSummary(report)

	if len(summary.KPIs) != 5 {
		t.Errorf("KPI cards = %d, want 5", len(summary.KPIs))
	}
	labels := map[string]bool{}
	for _, card := range summary.KPIs {
		labels[card.Label] = true
		if card.Value == "" {
			t.Errorf("card %q has empty value", card.Label)
		}
	}
	for _, want := range []string{"Mean Lead Time", "Mean Cycle Time", "Mean Fill Rate", "Mean Turnover", "Return Rate"} {
		if !labels[want] {
			t.Errorf("missing KPI card %q", want)
		}
	}
	if len(summary.Categories) == 0 {
		t.Error("expected category breakdown")
	}
	if summary.GeneratedAt.IsZero() || time.Since(summary.GeneratedAt) > time.Minute {
		t.Errorf("GeneratedAt = %v", summary.GeneratedAt)
	}
}

func TestBuildDashboardSummaryPartialReport(t *testing.T) {
	report := &metrics.Report{
		LeadTime: &metrics.LeadTimeMetrics{Mean: 2.5, TotalOrders: 10},
	}

	summary := BuildDashboardSummary(report)
	if len(summary.KPIs) != 1 {
		t.Errorf("KPI cards = %d, want 1", len(summary.KPIs))
	}
	if summary.TopSales != nil || len(summary.Categories) != 0 {
		t.Error("missing category group must not produce category output")
	}

	empty := BuildDashboardSummary(nil)
	if len(empty.KPIs) != 0 {
		t.Error("nil report should produce no cards")
	}
}
