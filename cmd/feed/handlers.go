package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/andresuchdata/supplychain-analytics/internal/domain"
	"github.com/andresuchdata/supplychain-analytics/internal/extract"
	"github.com/andresuchdata/supplychain-analytics/pkg/logger"
)

// feedServer serves a generated dataset over the same endpoints the real
// upstream feed exposes, so the pipeline can be run end to end locally.
type feedServer struct {
	orders    []domain.OrderRecord
	returns   []domain.ReturnRecord
	people    []domain.PersonRecord
	inventory []domain.InventoryRecord
}

func newFeedServer(ds extract.Dataset) *feedServer {
	srv := &feedServer{
		orders:    ds.Orders,
		inventory: ds.Inventory,
		people:    ds.People,
	}
	if returns, ok := ds.Returns.Real(); ok {
		srv.returns = returns
	}
	return srv
}

func (s *feedServer) registerRoutes(r *mux.Router) {
	r.HandleFunc("/api/orders", s.handleOrders).Methods("GET")
	r.HandleFunc("/api/returns", s.handleReturns).Methods("GET")
	r.HandleFunc("/api/inventory", s.handleInventory).Methods("GET")
	r.HandleFunc("/api/people", s.handlePeople).Methods("GET")
	r.HandleFunc("/api/analytics", s.handleAnalytics).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
}

func (s *feedServer) handleOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, paginate(s.orders, r))
}

func (s *feedServer) handleReturns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, paginate(s.returns, r))
}

func (s *feedServer) handleInventory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, paginate(s.inventory, r))
}

func (s *feedServer) handlePeople(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, paginate(s.people, r))
}

// handleAnalytics reports the feed's own rollup of the dataset: totals
// plus sales by region and category.
func (s *feedServer) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	var totalSales float64
	regionalSales := map[string]float64{}
	categorySales := map[string]float64{}
	for _, o := range s.orders {
		totalSales += o.Sales
		if o.Region != "" {
			regionalSales[o.Region] += o.Sales
		}
		if o.Category != "" {
			categorySales[o.Category] += o.Sales
		}
	}

	avgOrderValue := 0.0
	if len(s.orders) > 0 {
		avgOrderValue = totalSales / float64(len(s.orders))
	}

	writeJSON(w, map[string]any{
		"summary": map[string]any{
			"total_orders":    len(s.orders),
			"total_returns":   len(s.returns),
			"total_customers": len(s.people),
			"total_sales":     totalSales,
			"avg_order_value": avgOrderValue,
		},
		"regional_sales": regionalSales,
		"category_sales": categorySales,
	})
}

func (s *feedServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func paginate[T any](items []T, r *http.Request) []T {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to encode response")
	}
}
