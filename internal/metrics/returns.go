package metrics

import "github.com/andresuchdata/supplychain-analytics/internal/domain"

// ReturnMetrics computes the return rate and category/region breakdowns.
// With a real returns dataset the rate is distinct returned order IDs over
// total orders. When the dataset is absent, returns are simulated per order
// with category-specific probabilities from the injected random source, and
// the result is flagged as simulated.
func (c *Calculator) ReturnMetrics(orders []domain.OrderRecord, returns domain.ReturnsInput) *ReturnMetrics {
	if len(orders) == 0 {
		c.logger.Warn().Msg("returns: no orders supplied")
		return nil
	}

	if records, ok := returns.Real(); ok {
		return c.observedReturnMetrics(orders, records)
	}

	c.logger.Warn().Msg("returns: no returns dataset, simulating from category probabilities")
	return c.simulatedReturnMetrics(orders)
}

func (c *Calculator) observedReturnMetrics(orders []domain.OrderRecord, records []domain.ReturnRecord) *ReturnMetrics {
	returnedOrders := make(map[string]struct{})
	byCategory := make(map[string]int)
	byRegion := make(map[string]int)

	for _, r := range records {
		if r.OrderID != "" {
			returnedOrders[r.OrderID] = struct{}{}
		}
		if r.Category != "" {
			byCategory[r.Category]++
		}
		if r.Region != "" {
			byRegion[r.Region]++
		}
	}

	total := len(orders)
	return &ReturnMetrics{
		ReturnRate:          float64(len(returnedOrders)) / float64(total),
		TotalOrders:         total,
		TotalReturnedOrders: len(returnedOrders),
		TotalReturnItems:    len(records),
		ReturnsByCategory:   emptyAsNil(byCategory),
		ReturnsByRegion:     emptyAsNil(byRegion),
	}
}

func (c *Calculator) simulatedReturnMetrics(orders []domain.OrderRecord) *ReturnMetrics {
	returnedOrders := make(map[string]struct{})
	byCategory := make(map[string]int)
	byRegion := make(map[string]int)
	items := 0

	for _, o := range orders {
		if c.rng.Float64() >= c.returnProbability(o.Category) {
			continue
		}
		items++
		if o.OrderID != "" {
			returnedOrders[o.OrderID] = struct{}{}
		}
		if o.Category != "" {
			byCategory[o.Category]++
		}
		region := o.Region
		if region == "" {
			region = "Unknown"
		}
		byRegion[region]++
	}

	total := len(orders)
	return &ReturnMetrics{
		ReturnRate:          float64(len(returnedOrders)) / float64(total),
		TotalOrders:         total,
		TotalReturnedOrders: len(returnedOrders),
		TotalReturnItems:    items,
		ReturnsByCategory:   emptyAsNil(byCategory),
		ReturnsByRegion:     emptyAsNil(byRegion),
		Simulated:           true,
	}
}

func (c *Calculator) returnProbability(category string) float64 {
	if p, ok := c.returnProbs[category]; ok {
		return p
	}
	return c.defaultProb
}

func emptyAsNil(m map[string]int) map[string]int {
	if len(m) == 0 {
		return nil
	}
	return m
}
