// internal/metrics/types.go
package metrics

// Report collects every metric group. A nil group means the metric was
// unavailable (missing input or calculation failure), which is distinct from
// a group present with zero-valued stats.
type Report struct {
	LeadTime            *LeadTimeMetrics  `json:"lead_time,omitempty"`
	OrderCycle          *CycleTimeMetrics `json:"order_cycle,omitempty"`
	InventoryTurnover   *TurnoverMetrics  `json:"inventory_turnover,omitempty"`
	FillRate            *FillRateMetrics  `json:"fill_rate,omitempty"`
	CategoryPerformance *CategoryMetrics  `json:"category_performance,omitempty"`
	Returns             *ReturnMetrics    `json:"returns,omitempty"`
}

// LeadTimeMetrics summarizes order-to-shipment delay in whole days.
// Percentages are fractions of the valid subset, not the full input.
type LeadTimeMetrics struct {
	Mean             float64 `json:"mean"`
	Median           float64 `json:"median"`
	Std              float64 `json:"std"`
	Min              float64 `json:"min"`
	Max              float64 `json:"max"`
	P95              float64 `json:"95th_percentile"`
	ExcellentPct     float64 `json:"excellent_pct"`
	GoodPct          float64 `json:"good_pct"`
	PoorPct          float64 `json:"poor_pct"`
	TotalOrders      int     `json:"total_orders"`
	InvalidLeadTimes int     `json:"invalid_lead_times"`
}

// Cycle time sources. When no delivery date exists the calculator degrades
// to the shipment lead time as an explicitly labeled proxy.
const (
	CycleSourceDelivery = "delivery_date"
	CycleSourceProxy    = "ship_date_proxy"
	CycleSourceMixed    = "mixed"
)

// CycleTimeMetrics summarizes order-to-delivery span in whole days.
type CycleTimeMetrics struct {
	Mean              float64 `json:"mean"`
	Median            float64 `json:"median"`
	Std               float64 `json:"std"`
	Min               float64 `json:"min"`
	Max               float64 `json:"max"`
	P95               float64 `json:"95th_percentile"`
	TotalOrders       int     `json:"total_orders"`
	InvalidCycleTimes int     `json:"invalid_cycle_times"`
	ProxiedOrders     int     `json:"proxied_orders"`
	Source            string  `json:"source"`
}

// TurnoverMetrics summarizes per-product inventory turnover. Statistics are
// computed over per-product means, not raw per-date rows.
type TurnoverMetrics struct {
	MeanTurnover       float64 `json:"mean_turnover"`
	MedianTurnover     float64 `json:"median_turnover"`
	StdTurnover        float64 `json:"std_turnover"`
	MinTurnover        float64 `json:"min"`
	MaxTurnover        float64 `json:"max"`
	MeanDaysOnHand     float64 `json:"mean_days_on_hand"`
	MedianDaysOnHand   float64 `json:"median_days_on_hand"`
	TotalProducts      int     `json:"total_products"`
	DaysOnHandExcluded int     `json:"days_on_hand_excluded"`
}

// FillRateMetrics summarizes per-product fill rate and stockout risk.
type FillRateMetrics struct {
	MeanFillRate   float64 `json:"mean_fill_rate"`
	MedianFillRate float64 `json:"median_fill_rate"`
	StdFillRate    float64 `json:"std_fill_rate"`
	ExcellentPct   float64 `json:"excellent_fill_rate_pct"`
	GoodPct        float64 `json:"good_fill_rate_pct"`
	PoorPct        float64 `json:"poor_fill_rate_pct"`
	ProductsAtRisk int     `json:"products_at_risk"`
	TotalProducts  int     `json:"total_products"`
	RiskPercentage float64 `json:"risk_percentage"`
}

// CategoryBreakdown merges order-side and inventory-side aggregates for one
// category. Aggregates from a side with no data are nil, never zero-filled;
// the accompanying counts make an empty side distinguishable from a valid
// average of zero.
type CategoryBreakdown struct {
	Category string `json:"category"`

	TotalSales   *float64 `json:"total_sales,omitempty"`
	AvgSale      *float64 `json:"avg_sale,omitempty"`
	TotalItems   int      `json:"total_items"`
	UniqueOrders int      `json:"unique_orders"`

	AvgLeadTime    *float64 `json:"avg_lead_time,omitempty"`
	MedianLeadTime *float64 `json:"median_lead_time,omitempty"`
	StdLeadTime    *float64 `json:"std_lead_time,omitempty"`
	LeadTimeCount  int      `json:"lead_time_count"`

	AvgFillRate      *float64 `json:"avg_fill_rate,omitempty"`
	AvgTurnover      *float64 `json:"avg_turnover,omitempty"`
	InventoryRecords int      `json:"inventory_records"`
}

// TopCategory names the category that leads on a single aggregate.
type TopCategory struct {
	Category   string  `json:"category"`
	Value      float64 `json:"value"`
	OrderCount int     `json:"order_count"`
}

// CategoryMetrics is the per-category performance breakdown.
type CategoryMetrics struct {
	Breakdown       []CategoryBreakdown `json:"category_breakdown"`
	TopSales        *TopCategory        `json:"top_sales_category,omitempty"`
	BestLeadTime    *TopCategory        `json:"best_lead_time_category,omitempty"`
	TotalCategories int                 `json:"total_categories"`
}

// ReturnMetrics summarizes observed or simulated returns. Simulated reports
// are flagged so consumers never mistake them for measured data.
type ReturnMetrics struct {
	ReturnRate          float64        `json:"return_rate"`
	TotalOrders         int            `json:"total_orders"`
	TotalReturnedOrders int            `json:"total_returned_orders"`
	TotalReturnItems    int            `json:"total_return_items"`
	ReturnsByCategory   map[string]int `json:"returns_by_category,omitempty"`
	ReturnsByRegion     map[string]int `json:"returns_by_region,omitempty"`
	Simulated           bool           `json:"simulated"`
}
