package csvimport

import (
	"testing"
	"time"
)

func TestParseOrderRow(t *testing.T) {
	colMap := map[string]int{
		"order_id": 0, "order_date": 1, "ship_date": 2, "customer_id": 3,
		"product_id": 4, "category": 5, "quantity": 6, "sales": 7,
	}

	t.Run("valid row", func(t *testing.T) {
		order, ok := parseOrderRow(colMap, []string{
			"ORD_001", "2024-01-01", "2024-01-04", "CUST_01", "PROD_01", "Technology", "2", "100",
		})
		if !ok {
			t.Fatal("valid row rejected")
		}
		if order.OrderID != "ORD_001" || order.Category != "Technology" {
			t.Errorf("order = %+v", order)
		}
		if order.LeadTimeDays == nil || *order.LeadTimeDays != 3 {
			t.Error("lead time not derived")
		}
		if order.OrderValue != 200 {
			t.Errorf("order value = %v, want 200", order.OrderValue)
		}
	})

	t.Run("missing order id", func(t *testing.T) {
		if _, ok := parseOrderRow(colMap, []string{"", "2024-01-01", "", "", "", "", "", ""}); ok {
			t.Error("row without order id accepted")
		}
	})

	t.Run("bad order date", func(t *testing.T) {
		if _, ok := parseOrderRow(colMap, []string{"ORD_002", "soon", "", "", "", "", "", ""}); ok {
			t.Error("row with unparseable date accepted")
		}
	})
}

func TestParseInventoryRow(t *testing.T) {
	colMap := map[string]int{
		"date": 0, "product_id": 1, "category": 2, "stock_level": 3,
		"daily_demand": 4, "fill_rate": 5, "annualized_turnover": 6, "stockout_risk": 7,
	}

	inv, ok := parseInventoryRow(colMap, []string{
		"2024-01-01", "PROD_01", "Furniture", "50", "5", "1.2", "6.5", "true",
	})
	if !ok {
		t.Fatal("valid row rejected")
	}
	if !inv.Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", inv.Date)
	}
	if inv.FillRate != 1 {
		t.Errorf("fill rate = %v, want clamped to 1", inv.FillRate)
	}
	if !inv.StockoutRisk {
		t.Error("stockout risk not parsed")
	}

	if _, ok := parseInventoryRow(colMap, []string{"2024-01-01", "", "", "", "", "", "", ""}); ok {
		t.Error("row without product id accepted")
	}
}

func TestParseReturnRow(t *testing.T) {
	colMap := map[string]int{"return_date": 0, "order_id": 1, "category": 2}

	ret, ok := parseReturnRow(colMap, []string{"2024-01-10", "ORD_001", "Technology"})
	if !ok {
		t.Fatal("valid row rejected")
	}
	if ret.OrderID != "ORD_001" || ret.Category != "Technology" {
		t.Errorf("return = %+v", ret)
	}
	if ret.ReturnDate.IsZero() {
		t.Error("return date not parsed")
	}

	if _, ok := parseReturnRow(colMap, []string{"2024-01-10", "", ""}); ok {
		t.Error("row without order id accepted")
	}
}

func TestNormalizeColumn(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Order ID", "order_id"},
		{" Stock Level ", "stock_level"},
		{"fill-rate", "fill_rate"},
	}
	for _, tt := range tests {
		if got := normalizeColumn(tt.in); got != tt.want {
			t.Errorf("normalizeColumn(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
