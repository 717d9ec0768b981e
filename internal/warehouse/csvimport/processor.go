package csvimport

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"github.com/andresuchdata/supplychain-analytics/internal/domain"
)

// Processor imports CSV exports of the source datasets straight into the
// warehouse facts. The file's parent directory names the dataset:
// orders/, inventory/ or returns/.
type Processor struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewProcessor(db *sql.DB, logger zerolog.Logger) *Processor {
	return &Processor{db: db, logger: logger}
}

func (p *Processor) ProcessFile(ctx context.Context, filePath string) error {
	dir := filepath.Base(filepath.Dir(filePath))

	switch dir {
	case "orders":
		return p.processOrdersFile(ctx, filePath)
	case "inventory":
		return p.processInventoryFile(ctx, filePath)
	case "returns":
		return p.processReturnsFile(ctx, filePath)
	default:
		return fmt.Errorf("unknown dataset directory: %s", dir)
	}
}

func (p *Processor) processOrdersFile(ctx context.Context, filePath string) error {
	rows, colMap, err := readCSV(filePath)
	if err != nil {
		return err
	}

	inserted, skipped := 0, 0
	for _, row := range rows {
		order, ok := parseOrderRow(colMap, row)
		if !ok {
			skipped++
			continue
		}

		var leadTime sql.NullInt64
		if order.LeadTimeDays != nil {
			leadTime = sql.NullInt64{Int64: int64(*order.LeadTimeDays), Valid: true}
		}
		_, err := p.db.ExecContext(ctx, `
			INSERT INTO fact_orders (
				order_id, order_date, ship_date, customer_id, product_id,
				category, region, country, quantity, sales, profit,
				lead_time_days, order_value
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (order_id, product_id, order_date) DO UPDATE SET
				quantity = EXCLUDED.quantity,
				sales = EXCLUDED.sales,
				profit = EXCLUDED.profit,
				lead_time_days = EXCLUDED.lead_time_days,
				order_value = EXCLUDED.order_value`,
			order.OrderID, order.OrderDate, nullDate(order.ShipDate), order.CustomerID, order.ProductID,
			order.Category, order.Region, order.Country, order.Quantity, order.Sales, order.Profit,
			leadTime, order.OrderValue,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order %s: %w", order.OrderID, err)
		}
		inserted++
	}

	p.logger.Info().Str("file", filePath).Int("inserted", inserted).Int("skipped", skipped).Msg("Orders CSV imported")
	return nil
}

func (p *Processor) processInventoryFile(ctx context.Context, filePath string) error {
	rows, colMap, err := readCSV(filePath)
	if err != nil {
		return err
	}

	inserted, skipped := 0, 0
	for _, row := range rows {
		inv, ok := parseInventoryRow(colMap, row)
		if !ok {
			skipped++
			continue
		}
		_, err := p.db.ExecContext(ctx, `
			INSERT INTO fact_inventory (
				date, product_id, category, stock_level, daily_demand,
				fill_rate, annualized_turnover, stockout_risk
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (date, product_id) DO UPDATE SET
				stock_level = EXCLUDED.stock_level,
				daily_demand = EXCLUDED.daily_demand,
				fill_rate = EXCLUDED.fill_rate,
				annualized_turnover = EXCLUDED.annualized_turnover,
				stockout_risk = EXCLUDED.stockout_risk`,
			inv.Date, inv.ProductID, inv.Category, inv.StockLevel, inv.DailyDemand,
			inv.FillRate, inv.AnnualizedTurnover, inv.StockoutRisk,
		)
		if err != nil {
			return fmt.Errorf("failed to insert inventory for %s: %w", inv.ProductID, err)
		}
		inserted++
	}

	p.logger.Info().Str("file", filePath).Int("inserted", inserted).Int("skipped", skipped).Msg("Inventory CSV imported")
	return nil
}

func (p *Processor) processReturnsFile(ctx context.Context, filePath string) error {
	rows, colMap, err := readCSV(filePath)
	if err != nil {
		return err
	}

	inserted, skipped := 0, 0
	for _, row := range rows {
		ret, ok := parseReturnRow(colMap, row)
		if !ok {
			skipped++
			continue
		}
		_, err := p.db.ExecContext(ctx, `
			INSERT INTO fact_returns (
				return_date, order_id, customer_id, product_id, category, region, reason
			) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			nullDate(ret.ReturnDate), ret.OrderID, ret.CustomerID, ret.ProductID, ret.Category, ret.Region, ret.Reason,
		)
		if err != nil {
			return fmt.Errorf("failed to insert return for order %s: %w", ret.OrderID, err)
		}
		inserted++
	}

	p.logger.Info().Str("file", filePath).Int("inserted", inserted).Int("skipped", skipped).Msg("Returns CSV imported")
	return nil
}

func readCSV(filePath string) ([][]string, map[string]int, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colMap := make(map[string]int, len(header))
	for i, col := range header {
		colMap[normalizeColumn(col)] = i
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV rows: %w", err)
	}
	return rows, colMap, nil
}

func parseOrderRow(colMap map[string]int, row []string) (domain.OrderRecord, bool) {
	orderID := field(colMap, row, "order_id")
	orderDate, ok := parseDate(field(colMap, row, "order_date"))
	if orderID == "" || !ok {
		return domain.OrderRecord{}, false
	}

	order := domain.OrderRecord{
		OrderID:    orderID,
		OrderDate:  orderDate,
		CustomerID: field(colMap, row, "customer_id"),
		ProductID:  field(colMap, row, "product_id"),
		Category:   field(colMap, row, "category"),
		Region:     field(colMap, row, "region"),
		Country:    field(colMap, row, "country"),
		Quantity:   parseInt(field(colMap, row, "quantity")),
		Sales:      parseFloat(field(colMap, row, "sales")),
		Profit:     parseFloat(field(colMap, row, "profit")),
	}
	if shipDate, ok := parseDate(field(colMap, row, "ship_date")); ok {
		order.ShipDate = shipDate
	}
	return domain.DeriveOrderFields(order), true
}

func parseInventoryRow(colMap map[string]int, row []string) (domain.InventoryRecord, bool) {
	productID := field(colMap, row, "product_id")
	date, ok := parseDate(field(colMap, row, "date"))
	if productID == "" || !ok {
		return domain.InventoryRecord{}, false
	}

	return domain.InventoryRecord{
		Date:               date,
		ProductID:          productID,
		ProductName:        field(colMap, row, "product_name"),
		Category:           field(colMap, row, "category"),
		StockLevel:         parseInt(field(colMap, row, "stock_level")),
		DailyDemand:        parseInt(field(colMap, row, "daily_demand")),
		FillRate:           domain.ClampFillRate(parseFloat(field(colMap, row, "fill_rate"))),
		AnnualizedTurnover: parseFloat(field(colMap, row, "annualized_turnover")),
		StockoutRisk:       parseBool(field(colMap, row, "stockout_risk")),
	}, true
}

func parseReturnRow(colMap map[string]int, row []string) (domain.ReturnRecord, bool) {
	orderID := field(colMap, row, "order_id")
	if orderID == "" {
		return domain.ReturnRecord{}, false
	}

	ret := domain.ReturnRecord{
		OrderID:    orderID,
		CustomerID: field(colMap, row, "customer_id"),
		ProductID:  field(colMap, row, "product_id"),
		Category:   field(colMap, row, "category"),
		Region:     field(colMap, row, "region"),
		Reason:     field(colMap, row, "reason"),
	}
	if date, ok := parseDate(field(colMap, row, "return_date")); ok {
		ret.ReturnDate = date
	}
	return ret, true
}

func normalizeColumn(col string) string {
	col = strings.ToLower(strings.TrimSpace(col))
	col = strings.ReplaceAll(col, " ", "_")
	return strings.ReplaceAll(col, "-", "_")
}

func field(colMap map[string]int, row []string, key string) string {
	idx, ok := colMap[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

var csvDateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", "1/2/2006", time.RFC3339}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseInt(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseBool(s string) bool {
	v, err := strconv.ParseBool(strings.ToLower(s))
	if err != nil {
		return false
	}
	return v
}

func nullDate(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
