package metrics

import (
	"sort"

	"github.com/andresuchdata/supplychain-analytics/internal/domain"
)

type categoryOrders struct {
	totalSales float64
	items      int
	orderIDs   map[string]struct{}
	leadTimes  []float64
}

type categoryInventory struct {
	fillSum     float64
	turnoverSum float64
	rows        int
}

// CategoryPerformanceMetrics independently aggregates orders and inventory
// by category, then outer-joins on category: a category present in only one
// source still appears, with the other side's aggregates left nil.
func (c *Calculator) CategoryPerformanceMetrics(orders []domain.OrderRecord, inventory []domain.InventoryRecord) *CategoryMetrics {
	ordersByCat := c.aggregateOrdersByCategory(orders)
	invByCat := aggregateInventoryByCategory(inventory)

	if len(ordersByCat) == 0 && len(invByCat) == 0 {
		c.logger.Warn().Msg("category performance: no categorized data supplied")
		return nil
	}

	categories := make(map[string]struct{}, len(ordersByCat)+len(invByCat))
	for cat := range ordersByCat {
		categories[cat] = struct{}{}
	}
	for cat := range invByCat {
		categories[cat] = struct{}{}
	}

	names := make([]string, 0, len(categories))
	for cat := range categories {
		names = append(names, cat)
	}
	sort.Strings(names)

	breakdown := make([]CategoryBreakdown, 0, len(names))
	var topSales *TopCategory
	var bestLead *TopCategory

	for _, cat := range names {
		row := CategoryBreakdown{Category: cat}

		if agg, ok := ordersByCat[cat]; ok {
			row.TotalSales = ptr(agg.totalSales)
			row.AvgSale = ptr(agg.totalSales / float64(agg.items))
			row.TotalItems = agg.items
			row.UniqueOrders = len(agg.orderIDs)

			if len(agg.leadTimes) > 0 {
				stats := summarize(agg.leadTimes)
				row.AvgLeadTime = ptr(stats.Mean)
				row.MedianLeadTime = ptr(stats.Median)
				row.StdLeadTime = ptr(stats.Std)
				row.LeadTimeCount = stats.Count
			}

			if topSales == nil || agg.totalSales > topSales.Value {
				topSales = &TopCategory{
					Category:   cat,
					Value:      agg.totalSales,
					OrderCount: len(agg.orderIDs),
				}
			}
			if row.AvgLeadTime != nil && (bestLead == nil || *row.AvgLeadTime < bestLead.Value) {
				bestLead = &TopCategory{
					Category:   cat,
					Value:      *row.AvgLeadTime,
					OrderCount: row.LeadTimeCount,
				}
			}
		}

		if agg, ok := invByCat[cat]; ok {
			n := float64(agg.rows)
			row.AvgFillRate = ptr(agg.fillSum / n)
			row.AvgTurnover = ptr(agg.turnoverSum / n)
			row.InventoryRecords = agg.rows
		}

		breakdown = append(breakdown, row)
	}

	return &CategoryMetrics{
		Breakdown:       breakdown,
		TopSales:        topSales,
		BestLeadTime:    bestLead,
		TotalCategories: len(breakdown),
	}
}

// aggregateOrdersByCategory sums sales and collects valid lead times per
// category. Uncategorized orders are skipped with a count in the logs.
func (c *Calculator) aggregateOrdersByCategory(orders []domain.OrderRecord) map[string]*categoryOrders {
	byCat := make(map[string]*categoryOrders)
	skipped := 0
	for _, o := range orders {
		if o.Category == "" {
			skipped++
			continue
		}
		agg, ok := byCat[o.Category]
		if !ok {
			agg = &categoryOrders{orderIDs: make(map[string]struct{})}
			byCat[o.Category] = agg
		}
		agg.totalSales += o.Sales
		agg.items++
		if o.OrderID != "" {
			agg.orderIDs[o.OrderID] = struct{}{}
		}
		if lt, ok := c.orderLeadTime(o); ok {
			agg.leadTimes = append(agg.leadTimes, float64(lt))
		}
	}
	if skipped > 0 {
		c.logger.Warn().
			Int("skipped", skipped).
			Msg("category performance: orders without category skipped")
	}
	return byCat
}

func aggregateInventoryByCategory(inventory []domain.InventoryRecord) map[string]*categoryInventory {
	byCat := make(map[string]*categoryInventory)
	for _, rec := range inventory {
		if rec.Category == "" {
			continue
		}
		agg, ok := byCat[rec.Category]
		if !ok {
			agg = &categoryInventory{}
			byCat[rec.Category] = agg
		}
		agg.fillSum += rec.FillRate
		agg.turnoverSum += rec.AnnualizedTurnover
		agg.rows++
	}
	return byCat
}
