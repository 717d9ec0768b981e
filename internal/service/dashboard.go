package service

import (
	"fmt"
	"time"

	"github.com/andresuchdata/supplychain-analytics/internal/metrics"
)

// KPICard is one headline number on the dashboard.
type KPICard struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Note  string `json:"note,omitempty"`
}

// DashboardSummary is the API-facing rollup of a report: headline cards,
// the per-category table and the leaders.
type DashboardSummary struct {
	GeneratedAt      time.Time                   `json:"generated_at"`
	KPIs             []KPICard                   `json:"kpis"`
	Categories       []metrics.CategoryBreakdown `json:"categories,omitempty"`
	TopSales         *metrics.TopCategory        `json:"top_sales_category,omitempty"`
	BestLeadTime     *metrics.TopCategory        `json:"best_lead_time_category,omitempty"`
	ReturnsSimulated bool                        `json:"returns_simulated"`
}

// BuildDashboardSummary flattens a report into dashboard shape. Metric
// groups missing from the report simply contribute no cards.
func BuildDashboardSummary(report *metrics.Report) DashboardSummary {
	summary := DashboardSummary{
		GeneratedAt: time.Now().UTC(),
		KPIs:        []KPICard{},
	}
	if report == nil {
		return summary
	}

	if lt := report.LeadTime; lt != nil {
		summary.KPIs = append(summary.KPIs, KPICard{
			Label: "Mean Lead Time",
			Value: fmt.Sprintf("%.1f days", lt.Mean),
			Note:  fmt.Sprintf("%d orders", lt.TotalOrders),
		})
	}
	if oc := report.OrderCycle; oc != nil {
		card := KPICard{
			Label: "Mean Cycle Time",
			Value: fmt.Sprintf("%.1f days", oc.Mean),
		}
		if oc.ProxiedOrders > 0 {
			card.Note = fmt.Sprintf("%d orders proxied from ship date", oc.ProxiedOrders)
		}
		summary.KPIs = append(summary.KPIs, card)
	}
	if fr := report.FillRate; fr != nil {
		summary.KPIs = append(summary.KPIs, KPICard{
			Label: "Mean Fill Rate",
			Value: fmt.Sprintf("%.1f%%", fr.MeanFillRate*100),
			Note:  fmt.Sprintf("%d products at risk", fr.ProductsAtRisk),
		})
	}
	if to := report.InventoryTurnover; to != nil {
		summary.KPIs = append(summary.KPIs, KPICard{
			Label: "Mean Turnover",
			Value: fmt.Sprintf("%.1fx", to.MeanTurnover),
			Note:  fmt.Sprintf("%d products", to.TotalProducts),
		})
	}
	if ret := report.Returns; ret != nil {
		card := KPICard{
			Label: "Return Rate",
			Value: fmt.Sprintf("%.1f%%", ret.ReturnRate*100),
		}
		if ret.Simulated {
			card.Note = "simulated"
		}
		summary.KPIs = append(summary.KPIs, card)
		summary.ReturnsSimulated = ret.Simulated
	}

	if cat := report.CategoryPerformance; cat != nil {
		summary.Categories = cat.Breakdown
		summary.TopSales = cat.TopSales
		summary.BestLeadTime = cat.BestLeadTime
	}

	return summary
}
