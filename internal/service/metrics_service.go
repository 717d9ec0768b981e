package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/andresuchdata/supplychain-analytics/internal/cache"
	"github.com/andresuchdata/supplychain-analytics/internal/domain"
	"github.com/andresuchdata/supplychain-analytics/internal/extract"
	"github.com/andresuchdata/supplychain-analytics/internal/metrics"
)

// ErrNoSnapshotStore is returned by snapshot reads when the service runs
// without a warehouse.
var ErrNoSnapshotStore = errors.New("no snapshot store configured")

// SnapshotStore persists calculated reports. The postgres snapshot
// repository implements it; the service runs without one when no
// warehouse is configured.
type SnapshotStore interface {
	Save(ctx context.Context, source string, report *metrics.Report) error
	Latest(ctx context.Context, source string) (*metrics.Report, error)
	History(ctx context.Context, source string, limit int) ([]domain.SnapshotInfo, error)
}

// DataSource produces one extraction pass. The workbook reader, feed
// client and simulator all satisfy it through small adapters in the
// pipeline binary.
type DataSource interface {
	Name() string
	Fetch(ctx context.Context) (extract.Dataset, error)
}

type MetricsService struct {
	calc      *metrics.Calculator
	cache     cache.ReportCache
	snapshots SnapshotStore
	logger    zerolog.Logger
}

func NewMetricsService(calc *metrics.Calculator, cacheImpl cache.ReportCache, snapshots SnapshotStore, logger zerolog.Logger) *MetricsService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReportCache()
	}
	return &MetricsService{
		calc:      calc,
		cache:     cacheImpl,
		snapshots: snapshots,
		logger:    logger,
	}
}

// Report calculates the full metric set for a dataset, consulting the
// cache first and persisting a snapshot when a store is configured. Cache
// and snapshot failures degrade to a log line; the report itself always
// comes back.
func (s *MetricsService) Report(ctx context.Context, source string, ds extract.Dataset) (*metrics.Report, error) {
	filter := cache.ReportFilter{Source: source}

	if report, ok, err := s.cache.GetReport(ctx, filter); err == nil && ok {
		return report, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Str("source", source).Msg("Report cache get failed")
	}

	report := s.calc.CalculateAll(ds.Orders, ds.Inventory, ds.Returns)

	if err := s.cache.SetReport(ctx, filter, &report); err != nil {
		s.logger.Warn().Err(err).Str("source", source).Msg("Report cache set failed")
	}

	if s.snapshots != nil {
		if err := s.snapshots.Save(ctx, source, &report); err != nil {
			s.logger.Warn().Err(err).Str("source", source).Msg("Report snapshot save failed")
		}
	}

	return &report, nil
}

// RunSource extracts from a data source and calculates its report.
func (s *MetricsService) RunSource(ctx context.Context, src DataSource) (*metrics.Report, error) {
	ds, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("extraction from %s failed: %w", src.Name(), err)
	}
	return s.Report(ctx, src.Name(), ds)
}

// LatestReport reads the most recent persisted report for a source.
func (s *MetricsService) LatestReport(ctx context.Context, source string) (*metrics.Report, error) {
	if s.snapshots == nil {
		return nil, ErrNoSnapshotStore
	}
	return s.snapshots.Latest(ctx, source)
}

// ReportHistory lists recent snapshot metadata for a source, newest first.
func (s *MetricsService) ReportHistory(ctx context.Context, source string, limit int) ([]domain.SnapshotInfo, error) {
	if s.snapshots == nil {
		return nil, ErrNoSnapshotStore
	}
	return s.snapshots.History(ctx, source, limit)
}

// Invalidate drops every cached report.
func (s *MetricsService) Invalidate(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}
