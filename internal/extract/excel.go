package extract

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/supplychain-analytics/internal/domain"
)

const (
	sheetOrders  = "Orders"
	sheetReturns = "Returns"
	sheetPeople  = "People"
)

// dateLayouts covers the formats seen in superstore-style workbooks plus
// the text excelize yields for date-formatted cells.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"01-02-06",
	"2-Jan-06",
	time.RFC3339,
}

// WorkbookReader extracts orders, returns and people from an XLSX
// workbook laid out with one sheet per entity.
type WorkbookReader struct {
	path   string
	logger zerolog.Logger
}

func NewWorkbookReader(path string, logger zerolog.Logger) *WorkbookReader {
	return &WorkbookReader{path: path, logger: logger}
}

// Read opens the workbook and extracts every sheet it knows about. The
// Orders sheet is required; Returns and People are optional, and a missing
// Returns sheet yields an absent returns input so downstream consumers can
// fall back to simulation.
func (r *WorkbookReader) Read() (Dataset, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to open workbook %s: %w", r.path, err)
	}
	defer f.Close()

	orders, err := r.readOrders(f)
	if err != nil {
		return Dataset{}, err
	}

	ds := Dataset{Orders: orders, Returns: domain.NoReturns()}

	if hasSheet(f, sheetReturns) {
		returns, err := r.readReturns(f)
		if err != nil {
			return Dataset{}, err
		}
		ds.Returns = domain.RealReturns(returns)
	} else {
		r.logger.Warn().Str("sheet", sheetReturns).Msg("Sheet not found, returns will be simulated")
	}

	if hasSheet(f, sheetPeople) {
		people, err := r.readPeople(f)
		if err != nil {
			return Dataset{}, err
		}
		ds.People = people
	}

	r.logger.Info().
		Str("workbook", r.path).
		Int("orders", len(ds.Orders)).
		Int("people", len(ds.People)).
		Msg("Workbook extracted")

	return ds, nil
}

func (r *WorkbookReader) readOrders(f *excelize.File) ([]domain.OrderRecord, error) {
	rows, err := f.GetRows(sheetOrders)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetOrders, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %s has no data rows", sheetOrders)
	}

	cols := indexHeader(rows[0])
	orders := make([]domain.OrderRecord, 0, len(rows)-1)
	skipped := 0

	for _, row := range rows[1:] {
		orderID := cell(row, cols, "order id")
		orderDate, dateOK := parseDate(cell(row, cols, "order date"))
		if orderID == "" || !dateOK {
			skipped++
			continue
		}

		shipDate, _ := parseDate(cell(row, cols, "ship date"))
		order := domain.OrderRecord{
			OrderID:    orderID,
			OrderDate:  orderDate,
			ShipDate:   shipDate,
			CustomerID: cell(row, cols, "customer id"),
			ProductID:  cell(row, cols, "product id"),
			Category:   cell(row, cols, "category"),
			Quantity:   parseInt(cell(row, cols, "quantity")),
			Sales:      parseFloat(cell(row, cols, "sales")),
			Profit:     parseFloat(cell(row, cols, "profit")),
			Region:     cell(row, cols, "region"),
			Country:    cell(row, cols, "country"),
		}
		if delivered, ok := parseDate(cell(row, cols, "delivery date")); ok {
			order.DeliveryDate = &delivered
		}
		orders = append(orders, domain.DeriveOrderFields(order))
	}

	if skipped > 0 {
		r.logger.Warn().Int("skipped", skipped).Str("sheet", sheetOrders).Msg("Rows missing order id or order date")
	}
	return orders, nil
}

func (r *WorkbookReader) readReturns(f *excelize.File) ([]domain.ReturnRecord, error) {
	rows, err := f.GetRows(sheetReturns)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetReturns, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	cols := indexHeader(rows[0])
	returns := make([]domain.ReturnRecord, 0, len(rows)-1)
	skipped := 0

	for _, row := range rows[1:] {
		orderID := cell(row, cols, "order id")
		if orderID == "" {
			skipped++
			continue
		}
		ret := domain.ReturnRecord{
			OrderID:    orderID,
			CustomerID: cell(row, cols, "customer id"),
			ProductID:  cell(row, cols, "product id"),
			Category:   cell(row, cols, "category"),
			Region:     cell(row, cols, "region"),
			Reason:     cell(row, cols, "reason"),
		}
		if date, ok := parseDate(cell(row, cols, "return date")); ok {
			ret.ReturnDate = date
		}
		returns = append(returns, ret)
	}

	if skipped > 0 {
		r.logger.Warn().Int("skipped", skipped).Str("sheet", sheetReturns).Msg("Rows missing order id")
	}
	return returns, nil
}

func (r *WorkbookReader) readPeople(f *excelize.File) ([]domain.PersonRecord, error) {
	rows, err := f.GetRows(sheetPeople)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetPeople, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	cols := indexHeader(rows[0])
	people := make([]domain.PersonRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := cell(row, cols, "person")
		if name == "" {
			name = cell(row, cols, "name")
		}
		if name == "" {
			continue
		}
		people = append(people, domain.PersonRecord{
			Name:   name,
			Region: cell(row, cols, "region"),
		})
	}
	return people, nil
}

func hasSheet(f *excelize.File, name string) bool {
	for _, s := range f.GetSheetList() {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// indexHeader maps normalized header names to column positions. Headers
// like "Order ID", "order_id" and "OrderID" all resolve to "order id".
func indexHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		if _, exists := cols[key]; !exists {
			cols[key] = i
		}
	}
	return cols
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, "_", " ")
	h = strings.ReplaceAll(h, "-", " ")
	return strings.Join(strings.Fields(h), " ")
}

func cell(row []string, cols map[string]int, key string) string {
	idx, ok := cols[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseFloat(s string) float64 {
	s = strings.ReplaceAll(strings.TrimPrefix(s, "$"), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		// Quantity cells sometimes carry a decimal formatting artifact.
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			return int(f)
		}
		return 0
	}
	return v
}
