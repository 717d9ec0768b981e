package extract

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/andresuchdata/supplychain-analytics/internal/domain"
)

var (
	simCategories = []string{"Electronics", "Clothing", "Home", "Sports"}
	simCountries  = []string{"USA", "Canada", "UK", "Germany", "France"}
	simRegions    = []string{"West", "East", "Central", "South"}
)

// SimulatorOptions configures the sample-data generator. Zero values fall
// back to the standard demo shape (100 orders, 30 inventory days, 10
// products, 20 returns).
type SimulatorOptions struct {
	OrderCount   int
	Days         int
	ProductCount int
	ReturnCount  int
	Start        time.Time
	Rand         *rand.Rand
	Logger       zerolog.Logger
}

// Simulator produces a deterministic demo dataset. With the same seed it
// always generates the same records, so demo runs and tests are repeatable.
type Simulator struct {
	orderCount   int
	days         int
	productCount int
	returnCount  int
	start        time.Time
	rng          *rand.Rand
	logger       zerolog.Logger
}

func NewSimulator(opts SimulatorOptions) *Simulator {
	if opts.OrderCount <= 0 {
		opts.OrderCount = 100
	}
	if opts.Days <= 0 {
		opts.Days = 30
	}
	if opts.ProductCount <= 0 {
		opts.ProductCount = 10
	}
	if opts.ReturnCount <= 0 {
		opts.ReturnCount = 20
	}
	if opts.Start.IsZero() {
		opts.Start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Simulator{
		orderCount:   opts.OrderCount,
		days:         opts.Days,
		productCount: opts.ProductCount,
		returnCount:  opts.ReturnCount,
		start:        opts.Start,
		rng:          opts.Rand,
		logger:       opts.Logger,
	}
}

// Dataset generates orders, inventory and returns in one pass.
func (s *Simulator) Dataset() Dataset {
	orders := s.Orders()
	inventory := s.Inventory()
	returns := s.Returns()

	s.logger.Info().
		Int("orders", len(orders)).
		Int("inventory_rows", len(inventory)).
		Int("returns", len(returns)).
		Msg("Sample data generated")

	return Dataset{
		Orders:    orders,
		Inventory: inventory,
		Returns:   domain.RealReturns(returns),
	}
}

// Orders generates one order per day starting at the configured start date.
// Ship dates trail order dates by two days, so the demo lead-time profile
// is uniform unless the caller post-processes it.
func (s *Simulator) Orders() []domain.OrderRecord {
	orders := make([]domain.OrderRecord, 0, s.orderCount)
	for i := 0; i < s.orderCount; i++ {
		orderDate := s.start.AddDate(0, 0, i)
		order := domain.OrderRecord{
			OrderID:    fmt.Sprintf("ORD_%03d", i+1),
			OrderDate:  orderDate,
			ShipDate:   orderDate.AddDate(0, 0, 2),
			CustomerID: fmt.Sprintf("CUST_%02d", (i+1)%20),
			ProductID:  fmt.Sprintf("PROD_%02d", (i+1)%s.productCount),
			Category:   simCategories[i%len(simCategories)],
			Quantity:   1 + s.rng.Intn(9),
			Sales:      100 + s.rng.Float64()*900,
			Profit:     10 + s.rng.Float64()*190,
			Country:    simCountries[i%len(simCountries)],
			Region:     simRegions[i%len(simRegions)],
		}
		orders = append(orders, domain.DeriveOrderFields(order))
	}
	return orders
}

// Inventory generates one snapshot per product per day.
func (s *Simulator) Inventory() []domain.InventoryRecord {
	inventory := make([]domain.InventoryRecord, 0, s.days*s.productCount)
	for d := 0; d < s.days; d++ {
		date := s.start.AddDate(0, 0, d)
		for p := 0; p < s.productCount; p++ {
			inventory = append(inventory, domain.InventoryRecord{
				Date:               date,
				ProductID:          fmt.Sprintf("PROD_%02d", p),
				ProductName:        fmt.Sprintf("Product %d", p),
				Category:           simCategories[p%len(simCategories)],
				StockLevel:         10 + s.rng.Intn(190),
				DailyDemand:        1 + s.rng.Intn(9),
				FillRate:           domain.ClampFillRate(0.7 + s.rng.Float64()*0.3),
				AnnualizedTurnover: 2 + s.rng.Float64()*10,
				StockoutRisk:       s.rng.Float64() < 0.1,
			})
		}
	}
	return inventory
}

// Returns picks random order IDs out of the generated order range. The
// same order can be returned more than once, matching real feeds where a
// multi-item order produces one row per returned item.
func (s *Simulator) Returns() []domain.ReturnRecord {
	returns := make([]domain.ReturnRecord, 0, s.returnCount)
	for i := 0; i < s.returnCount; i++ {
		returns = append(returns, domain.ReturnRecord{
			ReturnDate: s.start.AddDate(0, 0, i),
			OrderID:    fmt.Sprintf("ORD_%03d", 1+s.rng.Intn(s.orderCount)),
			CustomerID: fmt.Sprintf("CUST_%02d", (i+1)%20),
			ProductID:  fmt.Sprintf("PROD_%02d", (i+1)%s.productCount),
			Category:   simCategories[i%len(simCategories)],
			Region:     simRegions[i%len(simRegions)],
		})
	}
	return returns
}
