package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/supplychain-analytics/internal/metrics"
	"github.com/andresuchdata/supplychain-analytics/internal/service"
)

type MetricsHandler struct {
	service *service.MetricsService
	source  service.DataSource
}

func NewMetricsHandler(svc *service.MetricsService, source service.DataSource) *MetricsHandler {
	return &MetricsHandler{service: svc, source: source}
}

// GetReport returns the full metric report for the configured source.
func (h *MetricsHandler) GetReport(c *gin.Context) {
	report, err := h.service.RunSource(c.Request.Context(), h.source)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetGroup returns a single metric group. An unknown group name is a 404;
// a known group that could not be calculated is also a 404, with a body
// that says so.
func (h *MetricsHandler) GetGroup(c *gin.Context) {
	report, err := h.service.RunSource(c.Request.Context(), h.source)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	group := c.Param("group")
	payload, known := selectGroup(report, group)
	if !known {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown metric group: " + group})
		return
	}
	if payload == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "metric group unavailable: " + group})
		return
	}
	c.JSON(http.StatusOK, payload)
}

// GetDashboardSummary returns the KPI rollup used by the dashboard.
func (h *MetricsHandler) GetDashboardSummary(c *gin.Context) {
	report, err := h.service.RunSource(c.Request.Context(), h.source)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, service.BuildDashboardSummary(report))
}

// GetLatestSnapshot serves the most recent persisted report without
// re-running extraction. Returns 503 when no warehouse is configured and
// 404 when no snapshot exists yet.
func (h *MetricsHandler) GetLatestSnapshot(c *gin.Context) {
	source := c.DefaultQuery("source", h.source.Name())

	report, err := h.service.LatestReport(c.Request.Context(), source)
	if errors.Is(err, service.ErrNoSnapshotStore) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot for source: " + source})
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetSnapshotHistory lists persisted report metadata, newest first.
func (h *MetricsHandler) GetSnapshotHistory(c *gin.Context) {
	source := c.DefaultQuery("source", h.source.Name())
	limit, _ := strconv.Atoi(c.Query("limit"))

	history, err := h.service.ReportHistory(c.Request.Context(), source, limit)
	if errors.Is(err, service.ErrNoSnapshotStore) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"source": source, "snapshots": history})
}

// InvalidateCache drops all cached reports.
func (h *MetricsHandler) InvalidateCache(c *gin.Context) {
	if err := h.service.Invalidate(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "invalidated"})
}

func selectGroup(report *metrics.Report, group string) (any, bool) {
	switch group {
	case "lead_time":
		return nilable(report.LeadTime), true
	case "order_cycle":
		return nilable(report.OrderCycle), true
	case "inventory_turnover":
		return nilable(report.InventoryTurnover), true
	case "fill_rate":
		return nilable(report.FillRate), true
	case "category_performance":
		return nilable(report.CategoryPerformance), true
	case "returns":
		return nilable(report.Returns), true
	default:
		return nil, false
	}
}

// nilable collapses a typed nil pointer into an untyped nil so callers can
// compare against nil directly.
func nilable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return v
}
