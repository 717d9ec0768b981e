package metrics

import "github.com/andresuchdata/supplychain-analytics/internal/domain"

// FillRateMetrics averages fill rate per product, classifies each product
// against the configured thresholds, and counts products with at least one
// risk-flagged observation. Fill rates arrive already clamped to [0, 1] by
// the extraction boundary.
func (c *Calculator) FillRateMetrics(inventory []domain.InventoryRecord) *FillRateMetrics {
	products := groupByProduct(inventory)
	if len(products) == 0 {
		c.logger.Warn().Msg("fill rate: no inventory supplied")
		return nil
	}

	fills := make([]float64, 0, len(products))
	var excellent, good, poor, atRisk int
	for _, p := range products {
		fill := p.fillSum / float64(p.rows)
		fills = append(fills, fill)

		switch {
		case fill >= c.fillRate.Excellent:
			excellent++
		case fill >= c.fillRate.Good:
			good++
		default:
			poor++
		}

		if p.riskAny {
			atRisk++
		}
	}

	stats := summarize(fills)
	total := float64(len(products))

	return &FillRateMetrics{
		MeanFillRate:   stats.Mean,
		MedianFillRate: stats.Median,
		StdFillRate:    stats.Std,
		ExcellentPct:   float64(excellent) / total,
		GoodPct:        float64(good) / total,
		PoorPct:        float64(poor) / total,
		ProductsAtRisk: atRisk,
		TotalProducts:  len(products),
		RiskPercentage: float64(atRisk) / total,
	}
}
