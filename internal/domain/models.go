// internal/domain/models.go
package domain

import "time"

// OrderRecord represents a single order line from any source (workbook,
// feed, or simulator). Date parsing and field derivation happen at the
// extraction boundary; the metrics engine never mutates these.
type OrderRecord struct {
	OrderID      string     `json:"order_id" db:"order_id"`
	OrderDate    time.Time  `json:"order_date" db:"order_date"`
	ShipDate     time.Time  `json:"ship_date" db:"ship_date"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty" db:"delivery_date"`
	CustomerID   string     `json:"customer_id" db:"customer_id"`
	ProductID    string     `json:"product_id" db:"product_id"`
	Category     string     `json:"category" db:"category"`
	Quantity     int        `json:"quantity" db:"quantity"`
	Sales        float64    `json:"sales" db:"sales"`
	Profit       float64    `json:"profit" db:"profit"`
	Region       string     `json:"region,omitempty" db:"region"`
	Country      string     `json:"country,omitempty" db:"country"`

	// Derived at the extraction boundary; nil when either date is missing.
	LeadTimeDays *int    `json:"lead_time_days,omitempty" db:"lead_time_days"`
	OrderValue   float64 `json:"order_value" db:"order_value"`
}

// InventoryRecord is a daily inventory snapshot for one product.
type InventoryRecord struct {
	Date               time.Time `json:"date" db:"date"`
	ProductID          string    `json:"product_id" db:"product_id"`
	ProductName        string    `json:"product_name,omitempty" db:"product_name"`
	Category           string    `json:"category" db:"category"`
	StockLevel         int       `json:"stock_level" db:"stock_level"`
	DailyDemand        int       `json:"daily_demand" db:"daily_demand"`
	FillRate           float64   `json:"fill_rate" db:"fill_rate"`
	AnnualizedTurnover float64   `json:"annualized_turnover" db:"annualized_turnover"`
	StockoutRisk       bool      `json:"stockout_risk" db:"stockout_risk"`
}

// ReturnRecord represents a single returned item.
type ReturnRecord struct {
	ReturnDate time.Time `json:"return_date" db:"return_date"`
	OrderID    string    `json:"order_id" db:"order_id"`
	CustomerID string    `json:"customer_id,omitempty" db:"customer_id"`
	ProductID  string    `json:"product_id,omitempty" db:"product_id"`
	Category   string    `json:"category,omitempty" db:"category"`
	Region     string    `json:"region,omitempty" db:"region"`
	Reason     string    `json:"reason,omitempty" db:"reason"`
}

// PersonRecord maps a customer/sales contact to a region (the People sheet).
type PersonRecord struct {
	Name   string `json:"name" db:"name"`
	Region string `json:"region" db:"region"`
}

// SnapshotInfo identifies one persisted metrics report without its payload.
type SnapshotInfo struct {
	ID        int64     `json:"id" db:"id"`
	Source    string    `json:"source" db:"source"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DeriveOrderFields returns a copy of o with lead time and order value
// filled in. The original is left untouched.
func DeriveOrderFields(o OrderRecord) OrderRecord {
	if o.LeadTimeDays == nil && !o.OrderDate.IsZero() && !o.ShipDate.IsZero() {
		days := wholeDays(o.OrderDate, o.ShipDate)
		o.LeadTimeDays = &days
	}
	if o.Quantity > 0 {
		o.OrderValue = o.Sales * float64(o.Quantity)
	} else {
		o.OrderValue = o.Sales
	}
	return o
}

// ClampFillRate bounds a fill-rate ratio to [0, 1]. Applied once at the
// point of derivation, never at consumption.
func ClampFillRate(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func wholeDays(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
