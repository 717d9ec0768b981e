package extract

import "github.com/andresuchdata/supplychain-analytics/internal/domain"

// Dataset bundles everything a single extraction pass produced. Orders is
// the only slice the metrics engine strictly needs; the rest may be empty
// depending on the source.
type Dataset struct {
	Orders    []domain.OrderRecord
	Inventory []domain.InventoryRecord
	Returns   domain.ReturnsInput
	People    []domain.PersonRecord
}
