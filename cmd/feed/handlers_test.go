package main

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/andresuchdata/supplychain-analytics/internal/domain"
	"github.com/andresuchdata/supplychain-analytics/internal/extract"
)

func newTestFeed(t *testing.T) *mux.Router {
	t.Helper()
	sim := extract.NewSimulator(extract.SimulatorOptions{
		Rand:   rand.New(rand.NewSource(5)),
		Logger: zerolog.Nop(),
	})
	r := mux.NewRouter()
	newFeedServer(sim.Dataset()).registerRoutes(r)
	return r
}

func get(t *testing.T, router *mux.Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestFeedOrders(t *testing.T) {
	router := newTestFeed(t)

	w := get(t, router, "/api/orders")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var orders []domain.OrderRecord
	if err := json.Unmarshal(w.Body.Bytes(), &orders); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(orders) != 100 {
		t.Errorf("orders = %d, want 100", len(orders))
	}
	if orders[0].OrderID == "" || orders[0].OrderDate.IsZero() {
		t.Errorf("first order incomplete: %+v", orders[0])
	}
}

func TestFeedPagination(t *testing.T) {
	router := newTestFeed(t)

	var limited []domain.OrderRecord
	if err := json.Unmarshal(get(t, router, "/api/orders?limit=10").Body.Bytes(), &limited); err != nil {
		t.Fatal(err)
	}
	if len(limited) != 10 {
		t.Errorf("limit=10 returned %d orders", len(limited))
	}

	var shifted []domain.OrderRecord
	if err := json.Unmarshal(get(t, router, "/api/orders?offset=95").Body.Bytes(), &shifted); err != nil {
		t.Fatal(err)
	}
	if len(shifted) != 5 {
		t.Errorf("offset=95 returned %d orders, want 5", len(shifted))
	}

	var beyond []domain.OrderRecord
	if err := json.Unmarshal(get(t, router, "/api/orders?offset=1000").Body.Bytes(), &beyond); err != nil {
		t.Fatal(err)
	}
	if len(beyond) != 0 {
		t.Errorf("offset past the end returned %d orders", len(beyond))
	}
}

func TestFeedReturnsAndPeople(t *testing.T) {
	router := newTestFeed(t)

	var returns []domain.ReturnRecord
	if err := json.Unmarshal(get(t, router, "/api/returns").Body.Bytes(), &returns); err != nil {
		t.Fatal(err)
	}
	if len(returns) != 20 {
		t.Errorf("returns = %d, want 20", len(returns))
	}

	w := get(t, router, "/api/people")
	if w.Code != http.StatusOK {
		t.Errorf("people status = %d", w.Code)
	}
}

func TestFeedInventory(t *testing.T) {
	router := newTestFeed(t)

	w := get(t, router, "/api/inventory")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var inventory []domain.InventoryRecord
	if err := json.Unmarshal(w.Body.Bytes(), &inventory); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(inventory) != 300 {
		t.Errorf("inventory = %d, want 300 (30 days x 10 products)", len(inventory))
	}
	if inventory[0].ProductID == "" || inventory[0].Date.IsZero() {
		t.Errorf("first snapshot incomplete: %+v", inventory[0])
	}

	var limited []domain.InventoryRecord
	if err := json.Unmarshal(get(t, router, "/api/inventory?limit=25").Body.Bytes(), &limited); err != nil {
		t.Fatal(err)
	}
	if len(limited) != 25 {
		t.Errorf("limit=25 returned %d snapshots", len(limited))
	}
}

func TestFeedAnalytics(t *testing.T) {
	router := newTestFeed(t)

	w := get(t, router, "/api/analytics")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var payload struct {
		Summary struct {
			TotalOrders   int     `json:"total_orders"`
			TotalSales    float64 `json:"total_sales"`
			AvgOrderValue float64 `json:"avg_order_value"`
		} `json:"summary"`
		CategorySales map[string]float64 `json:"category_sales"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if payload.Summary.TotalOrders != 100 {
		t.Errorf("total_orders = %d, want 100", payload.Summary.TotalOrders)
	}
	if payload.Summary.TotalSales <= 0 || payload.Summary.AvgOrderValue <= 0 {
		t.Error("sales rollup should be positive")
	}
	if len(payload.CategorySales) != 4 {
		t.Errorf("category_sales entries = %d, want 4", len(payload.CategorySales))
	}
}

func TestFeedHealth(t *testing.T) {
	if w := get(t, newTestFeed(t), "/health"); w.Code != http.StatusOK {
		t.Errorf("health status = %d", w.Code)
	}
}
