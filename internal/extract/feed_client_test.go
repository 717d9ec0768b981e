package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newFeedServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *FeedClient) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewFeedClient(srv.URL, 5*time.Second, 0.5, zerolog.Nop())
}

func TestFeedClientOrders(t *testing.T) {
	_, client := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/orders" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"order_id":"ORD_001","order_date":"2024-01-01T00:00:00Z","ship_date":"2024-01-04T00:00:00Z","customer_id":"CUST_01","product_id":"PROD_01","category":"Technology","quantity":2,"sales":100},
			{"order_id":"","order_date":"2024-01-02T00:00:00Z"},
			{"order_id":"ORD_003","order_date":"0001-01-01T00:00:00Z"}
		]`))
	})

	orders, err := client.Orders(context.Background())
	if err != nil {
		t.Fatalf("Orders() error: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want 1 (invalid rows dropped)", len(orders))
	}

	got := orders[0]
	if got.OrderID != "ORD_001" {
		t.Errorf("OrderID = %q", got.OrderID)
	}
	if got.LeadTimeDays == nil || *got.LeadTimeDays != 3 {
		t.Error("lead time not derived from feed dates")
	}
	if got.OrderValue != 200 {
		t.Errorf("OrderValue = %v, want 200", got.OrderValue)
	}
}

func TestFeedClientDatasetDegradesWithoutReturns(t *testing.T) {
	_, client := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/orders":
			w.Write([]byte(`[{"order_id":"ORD_001","order_date":"2024-01-01T00:00:00Z","ship_date":"2024-01-02T00:00:00Z"}]`))
		default:
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		}
	})

	ds, err := client.Dataset(context.Background())
	if err != nil {
		t.Fatalf("Dataset() error: %v", err)
	}
	if len(ds.Orders) != 1 {
		t.Errorf("orders = %d, want 1", len(ds.Orders))
	}
	if _, ok := ds.Returns.Real(); ok {
		t.Error("failed returns endpoint should yield an absent returns input")
	}
}

func TestFeedClientDatasetWithReturns(t *testing.T) {
	_, client := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/orders":
			w.Write([]byte(`[{"order_id":"ORD_001","order_date":"2024-01-01T00:00:00Z","ship_date":"2024-01-02T00:00:00Z"}]`))
		case "/api/returns":
			w.Write([]byte(`[{"order_id":"ORD_001","return_date":"2024-01-05T00:00:00Z","category":"Furniture"}]`))
		case "/api/people":
			w.Write([]byte(`[{"name":"Anna Andreadi","region":"West"}]`))
		default:
			http.NotFound(w, r)
		}
	})

	ds, err := client.Dataset(context.Background())
	if err != nil {
		t.Fatalf("Dataset() error: %v", err)
	}

	returns, ok := ds.Returns.Real()
	if !ok || len(returns) != 1 {
		t.Fatalf("returns input: ok=%v len=%d, want real with 1 record", ok, len(returns))
	}
	if returns[0].Category != "Furniture" {
		t.Errorf("return category = %q", returns[0].Category)
	}
	if len(ds.People) != 1 || ds.People[0].Region != "West" {
		t.Errorf("people = %+v", ds.People)
	}
}

func TestFeedClientDatasetWithInventory(t *testing.T) {
	_, client := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/orders":
			w.Write([]byte(`[{"order_id":"ORD_001","order_date":"2024-01-01T00:00:00Z","ship_date":"2024-01-02T00:00:00Z"}]`))
		case "/api/inventory":
			w.Write([]byte(`[
				{"date":"2024-01-01T00:00:00Z","product_id":"PROD_01","category":"Electronics","stock_level":50,"daily_demand":5,"fill_rate":0.9,"annualized_turnover":6},
				{"date":"2024-01-01T00:00:00Z","product_id":"PROD_02","category":"Clothing","stock_level":20,"daily_demand":2,"fill_rate":1.4,"annualized_turnover":4}
			]`))
		default:
			http.NotFound(w, r)
		}
	})

	ds, err := client.Dataset(context.Background())
	if err != nil {
		t.Fatalf("Dataset() error: %v", err)
	}
	if len(ds.Inventory) != 2 {
		t.Fatalf("inventory = %d, want 2", len(ds.Inventory))
	}
	if ds.Inventory[0].ProductID != "PROD_01" || ds.Inventory[0].StockLevel != 50 {
		t.Errorf("inventory[0] = %+v", ds.Inventory[0])
	}
	if ds.Inventory[1].FillRate != 1 {
		t.Errorf("FillRate = %v, want clamped to 1", ds.Inventory[1].FillRate)
	}
}

func TestFeedClientAnalytics(t *testing.T) {
	_, client := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/analytics" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"summary":{"total_orders":100,"total_sales":5000.5},"category_sales":{"Electronics":2500}}`))
	})

	analytics, err := client.Analytics(context.Background())
	if err != nil {
		t.Fatalf("Analytics() error: %v", err)
	}
	summary, ok := analytics["summary"].(map[string]any)
	if !ok {
		t.Fatalf("summary missing from analytics payload: %v", analytics)
	}
	if total, _ := summary["total_orders"].(float64); total != 100 {
		t.Errorf("total_orders = %v, want 100", summary["total_orders"])
	}
}

func TestFeedClientOrdersError(t *testing.T) {
	_, client := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	if _, err := client.Orders(context.Background()); err == nil {
		t.Error("expected error for non-200 response")
	}
}
