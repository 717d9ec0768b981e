package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/supplychain-analytics/internal/config"
	"github.com/andresuchdata/supplychain-analytics/internal/metrics"
)

const (
	reportKeyPrefix = "metrics:report"
	reportScanBatch = 100
)

// ReportFilter identifies one cached report variant. Source names the
// extraction path ("workbook", "feed", "demo"); the optional category and
// region slices narrow the input before calculation.
type ReportFilter struct {
	Source     string
	Categories []string
	Regions    []string
}

type ReportCache interface {
	GetReport(ctx context.Context, filter ReportFilter) (*metrics.Report, bool, error)
	SetReport(ctx context.Context, filter ReportFilter, report *metrics.Report) error
	InvalidateAll(ctx context.Context) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

// NewReportCache returns a redis-backed cache when caching is enabled and
// a noop cache otherwise, so callers never branch on configuration.
func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	client, err := dialReportRedis(cfg)
	if err != nil {
		return nil, err
	}

	return &redisReportCache{client: client, ttl: reportTTL(cfg)}, nil
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) GetReport(ctx context.Context, filter ReportFilter) (*metrics.Report, bool, error) {
	key := buildReportKey(filter)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report metrics.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("decode report cache: %w", err)
	}

	return &report, true, nil
}

func (c *redisReportCache) SetReport(ctx context.Context, filter ReportFilter, report *metrics.Report) error {
	key := buildReportKey(filter)
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisReportCache) InvalidateAll(ctx context.Context) error {
	return purgeByPrefix(ctx, c.client, reportKeyPrefix, reportScanBatch)
}

func (n *noopReportCache) GetReport(ctx context.Context, filter ReportFilter) (*metrics.Report, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) SetReport(ctx context.Context, filter ReportFilter, report *metrics.Report) error {
	return nil
}

func (n *noopReportCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildReportKey(filter ReportFilter) string {
	return fmt.Sprintf("%s:%s", reportKeyPrefix, reportFilterHash(filter))
}

func reportFilterHash(filter ReportFilter) string {
	parts := []string{}

	if filter.Source != "" {
		parts = append(parts, "source="+strings.ToLower(strings.TrimSpace(filter.Source)))
	}
	if len(filter.Categories) > 0 {
		parts = append(parts, "categories="+joinNormalized(filter.Categories))
	}
	if len(filter.Regions) > 0 {
		parts = append(parts, "regions="+joinNormalized(filter.Regions))
	}

	if len(parts) == 0 {
		return "default"
	}

	sort.Strings(parts)
	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func joinNormalized(values []string) string {
	c := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(strings.ToLower(v))
		if v == "" {
			continue
		}
		c = append(c, v)
	}
	sort.Strings(c)
	return strings.Join(c, ",")
}
