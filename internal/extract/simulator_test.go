package extract

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
)

func newTestSimulator(seed int64) *Simulator {
	return NewSimulator(SimulatorOptions{
		Rand:   rand.New(rand.NewSource(seed)),
		Logger: zerolog.Nop(),
	})
}

func TestSimulatorShape(t *testing.T) {
	ds := newTestSimulator(1).Dataset()

	if len(ds.Orders) != 100 {
		t.Errorf("orders = %d, want 100", len(ds.Orders))
	}
	if len(ds.Inventory) != 300 {
		t.Errorf("inventory rows = %d, want 300 (30 days x 10 products)", len(ds.Inventory))
	}
	returns, ok := ds.Returns.Real()
	if !ok {
		t.Fatal("simulated dataset should carry a real returns slice")
	}
	if len(returns) != 20 {
		t.Errorf("returns = %d, want 20", len(returns))
	}
}

func TestSimulatorOrdersDerived(t *testing.T) {
	orders := newTestSimulator(1).Orders()

	for _, o := range orders {
		if o.LeadTimeDays == nil {
			t.Fatalf("order %s has no lead time", o.OrderID)
		}
		if *o.LeadTimeDays != 2 {
			t.Errorf("order %s lead time = %d, want 2", o.OrderID, *o.LeadTimeDays)
		}
		if o.Quantity < 1 || o.Quantity > 9 {
			t.Errorf("order %s quantity = %d, want 1..9", o.OrderID, o.Quantity)
		}
		if o.Sales < 100 || o.Sales > 1000 {
			t.Errorf("order %s sales = %v, want [100, 1000]", o.OrderID, o.Sales)
		}
		if o.OrderValue != o.Sales*float64(o.Quantity) {
			t.Errorf("order %s order value not derived", o.OrderID)
		}
	}
}

func TestSimulatorInventoryBounds(t *testing.T) {
	inventory := newTestSimulator(2).Inventory()

	products := map[string]bool{}
	for _, inv := range inventory {
		products[inv.ProductID] = true
		if inv.FillRate < 0.7 || inv.FillRate > 1.0 {
			t.Errorf("fill rate %v out of [0.7, 1.0]", inv.FillRate)
		}
		if inv.DailyDemand < 1 {
			t.Errorf("daily demand %d must be positive", inv.DailyDemand)
		}
		if inv.AnnualizedTurnover < 2 || inv.AnnualizedTurnover > 12 {
			t.Errorf("turnover %v out of [2, 12]", inv.AnnualizedTurnover)
		}
	}
	if len(products) != 10 {
		t.Errorf("distinct products = %d, want 10", len(products))
	}
}

func TestSimulatorDeterministic(t *testing.T) {
	first := newTestSimulator(42).Dataset()
	second := newTestSimulator(42).Dataset()

	if !reflect.DeepEqual(first, second) {
		t.Error("same seed produced different datasets")
	}

	third := newTestSimulator(43).Dataset()
	if reflect.DeepEqual(first.Orders, third.Orders) {
		t.Error("different seeds produced identical orders")
	}
}

func TestSimulatorCustomShape(t *testing.T) {
	sim := NewSimulator(SimulatorOptions{
		OrderCount:   10,
		Days:         5,
		ProductCount: 3,
		ReturnCount:  4,
		Rand:         rand.New(rand.NewSource(1)),
		Logger:       zerolog.Nop(),
	})

	if got := len(sim.Orders()); got != 10 {
		t.Errorf("orders = %d, want 10", got)
	}
	if got := len(sim.Inventory()); got != 15 {
		t.Errorf("inventory rows = %d, want 15", got)
	}
	if got := len(sim.Returns()); got != 4 {
		t.Errorf("returns = %d, want 4", got)
	}
}
