package metrics

import "github.com/andresuchdata/supplychain-analytics/internal/domain"

// OrderCycleMetrics measures order-to-delivery span in whole days. Orders
// without a delivery date degrade to the shipment lead time as a proxy;
// the result labels the substitution through Source and ProxiedOrders
// instead of fabricating a synthetic delivery gap.
func (c *Calculator) OrderCycleMetrics(orders []domain.OrderRecord) *CycleTimeMetrics {
	if len(orders) == 0 {
		c.logger.Warn().Msg("order cycle: no orders supplied")
		return nil
	}

	valid := make([]float64, 0, len(orders))
	proxied := 0
	for _, o := range orders {
		ct, proxy, ok := c.orderCycleTime(o)
		if !ok {
			continue
		}
		valid = append(valid, float64(ct))
		if proxy {
			proxied++
		}
	}

	if len(valid) == 0 {
		c.logger.Warn().
			Int("orders", len(orders)).
			Msg("order cycle: no valid cycle times, omitting metric")
		return nil
	}

	source := CycleSourceDelivery
	switch {
	case proxied == len(valid):
		source = CycleSourceProxy
	case proxied > 0:
		source = CycleSourceMixed
	}
	if proxied > 0 {
		c.logger.Warn().
			Int("proxied_orders", proxied).
			Msg("order cycle: delivery dates missing, using shipment lead time as proxy")
	}

	stats := summarize(valid)
	return &CycleTimeMetrics{
		Mean:              stats.Mean,
		Median:            stats.Median,
		Std:               stats.Std,
		Min:               stats.Min,
		Max:               stats.Max,
		P95:               stats.P95,
		TotalOrders:       len(valid),
		InvalidCycleTimes: len(orders) - len(valid),
		ProxiedOrders:     proxied,
		Source:            source,
	}
}

// orderCycleTime returns the cycle time in whole days, whether the value is
// a lead-time proxy, and whether it passes the sanity range.
func (c *Calculator) orderCycleTime(o domain.OrderRecord) (int, bool, bool) {
	if o.DeliveryDate != nil && !o.OrderDate.IsZero() {
		ct := int(o.DeliveryDate.Sub(o.OrderDate).Hours() / 24)
		if ct < 0 || ct > c.maxLeadDays {
			return 0, false, false
		}
		return ct, false, true
	}

	lt, ok := c.orderLeadTime(o)
	if !ok {
		return 0, false, false
	}
	return lt, true, true
}
