package metrics

import "github.com/andresuchdata/supplychain-analytics/internal/domain"

// LeadTimeMetrics derives per-order lead time (ship date minus order date,
// whole days), excludes values outside [0, MaxLeadTimeDays], and summarizes
// the valid subset. Returns nil when no valid lead times exist, which the
// orchestrator surfaces as "metric unavailable".
func (c *Calculator) LeadTimeMetrics(orders []domain.OrderRecord) *LeadTimeMetrics {
	if len(orders) == 0 {
		c.logger.Warn().Msg("lead time: no orders supplied")
		return nil
	}

	valid := make([]float64, 0, len(orders))
	for _, o := range orders {
		lt, ok := c.orderLeadTime(o)
		if !ok {
			continue
		}
		valid = append(valid, float64(lt))
	}

	if len(valid) == 0 {
		c.logger.Warn().
			Int("orders", len(orders)).
			Msg("lead time: no valid lead times, omitting metric")
		return nil
	}

	stats := summarize(valid)

	var excellent, good, poor int
	for _, lt := range valid {
		switch c.classifyLeadTime(int(lt)) {
		case classExcellent:
			excellent++
		case classGood:
			good++
		default:
			poor++
		}
	}

	n := float64(len(valid))
	return &LeadTimeMetrics{
		Mean:             stats.Mean,
		Median:           stats.Median,
		Std:              stats.Std,
		Min:              stats.Min,
		Max:              stats.Max,
		P95:              stats.P95,
		ExcellentPct:     float64(excellent) / n,
		GoodPct:          float64(good) / n,
		PoorPct:          float64(poor) / n,
		TotalOrders:      len(valid),
		InvalidLeadTimes: len(orders) - len(valid),
	}
}

// orderLeadTime returns the order's lead time in whole days and whether it
// passes the sanity range. Records with missing dates count as invalid.
func (c *Calculator) orderLeadTime(o domain.OrderRecord) (int, bool) {
	var lt int
	switch {
	case o.LeadTimeDays != nil:
		lt = *o.LeadTimeDays
	case !o.OrderDate.IsZero() && !o.ShipDate.IsZero():
		lt = int(o.ShipDate.Sub(o.OrderDate).Hours() / 24)
	default:
		return 0, false
	}

	if lt < 0 || lt > c.maxLeadDays {
		return 0, false
	}
	return lt, true
}

type performanceClass int

const (
	classExcellent performanceClass = iota
	classGood
	classPoor
)

// classifyLeadTime buckets a valid lead time. Boundary semantics: exactly
// the excellent cutoff is excellent, exactly the good cutoff is good.
func (c *Calculator) classifyLeadTime(days int) performanceClass {
	switch {
	case days <= c.leadTime.Excellent:
		return classExcellent
	case days <= c.leadTime.Good:
		return classGood
	default:
		return classPoor
	}
}
