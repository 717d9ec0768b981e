package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/supplychain-analytics/internal/config"
)

func TestReportFilterHash(t *testing.T) {
	base := ReportFilter{Source: "feed", Categories: []string{"Technology", "Furniture"}}

	t.Run("order independent", func(t *testing.T) {
		reordered := ReportFilter{Source: "feed", Categories: []string{"Furniture", "Technology"}}
		if reportFilterHash(base) != reportFilterHash(reordered) {
			t.Error("category order changed the cache key")
		}
	})

	t.Run("case and whitespace normalized", func(t *testing.T) {
		noisy := ReportFilter{Source: " FEED ", Categories: []string{" technology", "FURNITURE "}}
		if reportFilterHash(base) != reportFilterHash(noisy) {
			t.Error("case or whitespace changed the cache key")
		}
	})

	t.Run("different filters differ", func(t *testing.T) {
		other := ReportFilter{Source: "workbook", Categories: []string{"Technology", "Furniture"}}
		if reportFilterHash(base) == reportFilterHash(other) {
			t.Error("distinct sources share a cache key")
		}
	})

	t.Run("empty filter uses default key", func(t *testing.T) {
		if got := reportFilterHash(ReportFilter{}); got != "default" {
			t.Errorf("hash = %q, want default", got)
		}
	})
}

func TestBuildReportKeyPrefix(t *testing.T) {
	key := buildReportKey(ReportFilter{Source: "demo"})
	if !strings.HasPrefix(key, reportKeyPrefix+":") {
		t.Errorf("key %q missing prefix %q", key, reportKeyPrefix)
	}
}

func TestReportTTL(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    time.Duration
	}{
		{"configured", 120, 2 * time.Minute},
		{"zero falls back", 0, defaultReportTTL},
		{"negative falls back", -5, defaultReportTTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reportTTL(config.CacheConfig{ReportTTLSeconds: tt.seconds}); got != tt.want {
				t.Errorf("reportTTL(%d) = %v, want %v", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestNoopReportCache(t *testing.T) {
	c := NewNoopReportCache()
	ctx := context.Background()

	report, hit, err := c.GetReport(ctx, ReportFilter{Source: "demo"})
	if err != nil || hit || report != nil {
		t.Errorf("noop GetReport = (%v, %v, %v), want (nil, false, nil)", report, hit, err)
	}
	if err := c.SetReport(ctx, ReportFilter{}, nil); err != nil {
		t.Errorf("noop SetReport error: %v", err)
	}
	if err := c.InvalidateAll(ctx); err != nil {
		t.Errorf("noop InvalidateAll error: %v", err)
	}
}
