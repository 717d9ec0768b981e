package metrics

import "github.com/andresuchdata/supplychain-analytics/internal/domain"

type productInventory struct {
	turnoverSum float64
	stockSum    float64
	demandSum   float64
	fillSum     float64
	riskAny     bool
	rows        int
}

// InventoryTurnoverMetrics averages turnover and stock/demand per product
// across snapshot dates, then summarizes over the per-product means so
// products with more history do not outweigh the rest. Days-on-hand is
// stock divided by demand; products whose mean demand is zero are excluded
// from the days-on-hand statistics but stay in the product count.
func (c *Calculator) InventoryTurnoverMetrics(inventory []domain.InventoryRecord) *TurnoverMetrics {
	products := groupByProduct(inventory)
	if len(products) == 0 {
		c.logger.Warn().Msg("inventory turnover: no inventory supplied")
		return nil
	}

	turnovers := make([]float64, 0, len(products))
	daysOnHand := make([]float64, 0, len(products))
	excluded := 0
	for _, p := range products {
		n := float64(p.rows)
		turnovers = append(turnovers, p.turnoverSum/n)

		meanDemand := p.demandSum / n
		if meanDemand > 0 {
			daysOnHand = append(daysOnHand, (p.stockSum/n)/meanDemand)
		} else {
			excluded++
		}
	}

	turnoverStats := summarize(turnovers)
	daysStats := summarize(daysOnHand)

	return &TurnoverMetrics{
		MeanTurnover:       turnoverStats.Mean,
		MedianTurnover:     turnoverStats.Median,
		StdTurnover:        turnoverStats.Std,
		MinTurnover:        turnoverStats.Min,
		MaxTurnover:        turnoverStats.Max,
		MeanDaysOnHand:     daysStats.Mean,
		MedianDaysOnHand:   daysStats.Median,
		TotalProducts:      len(products),
		DaysOnHandExcluded: excluded,
	}
}

func groupByProduct(inventory []domain.InventoryRecord) map[string]*productInventory {
	products := make(map[string]*productInventory)
	for _, rec := range inventory {
		if rec.ProductID == "" {
			continue
		}
		p, ok := products[rec.ProductID]
		if !ok {
			p = &productInventory{}
			products[rec.ProductID] = p
		}
		p.turnoverSum += rec.AnnualizedTurnover
		p.stockSum += float64(rec.StockLevel)
		p.demandSum += float64(rec.DailyDemand)
		p.fillSum += rec.FillRate
		p.riskAny = p.riskAny || rec.StockoutRisk
		p.rows++
	}
	return products
}
