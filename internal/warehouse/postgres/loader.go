package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/andresuchdata/supplychain-analytics/internal/domain"
)

// Loader writes extracted datasets into the star schema. Each load runs in
// one transaction per fact table so partial feeds never leave mixed state.
type Loader struct {
	db     *DB
	logger zerolog.Logger
}

func NewLoader(db *DB, logger zerolog.Logger) *Loader {
	return &Loader{db: db, logger: logger}
}

// LoadOrders upserts orders together with the product, customer and date
// dimensions they reference.
func (l *Loader) LoadOrders(ctx context.Context, orders []domain.OrderRecord) error {
	if len(orders) == 0 {
		return nil
	}

	err := l.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, o := range orders {
			if err := upsertProduct(ctx, tx, o.ProductID, "", o.Category); err != nil {
				return err
			}
			if err := upsertCustomer(ctx, tx, o.CustomerID, o.Region, o.Country); err != nil {
				return err
			}
			if err := upsertDate(ctx, tx, o.OrderDate); err != nil {
				return err
			}

			var leadTime sql.NullInt64
			if o.LeadTimeDays != nil {
				leadTime = sql.NullInt64{Int64: int64(*o.LeadTimeDays), Valid: true}
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO fact_orders (
					order_id, order_date, ship_date, delivery_date, customer_id,
					product_id, category, region, country, quantity, sales, profit,
					lead_time_days, order_value
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
				ON CONFLICT (order_id, product_id, order_date) DO UPDATE SET
					ship_date = EXCLUDED.ship_date,
					delivery_date = EXCLUDED.delivery_date,
					quantity = EXCLUDED.quantity,
					sales = EXCLUDED.sales,
					profit = EXCLUDED.profit,
					lead_time_days = EXCLUDED.lead_time_days,
					order_value = EXCLUDED.order_value`,
				o.OrderID, o.OrderDate, nullDate(o.ShipDate), o.DeliveryDate, o.CustomerID,
				o.ProductID, o.Category, o.Region, o.Country, o.Quantity, o.Sales, o.Profit,
				leadTime, o.OrderValue,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert order %s: %w", o.OrderID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.logger.Info().Int("orders", len(orders)).Msg("Orders fact loaded")
	return nil
}

// LoadInventory upserts inventory snapshots keyed by (date, product).
func (l *Loader) LoadInventory(ctx context.Context, inventory []domain.InventoryRecord) error {
	if len(inventory) == 0 {
		return nil
	}

	err := l.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, inv := range inventory {
			if err := upsertProduct(ctx, tx, inv.ProductID, inv.ProductName, inv.Category); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, `
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
				return fmt.Errorf("failed to upsert inventory for %s: %w", inv.ProductID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.logger.Info().Int("rows", len(inventory)).Msg("Inventory fact loaded")
	return nil
}

// LoadReturns replaces the returns fact with the given dataset. Returns
// feeds are full extracts, not increments, so the fact is truncated first.
func (l *Loader) LoadReturns(ctx context.Context, returns []domain.ReturnRecord) error {
	err := l.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `TRUNCATE fact_returns`); err != nil {
			return fmt.Errorf("failed to truncate returns fact: %w", err)
		}
		for _, r := range returns {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO fact_returns (
					return_date, order_id, customer_id, product_id, category, region, reason
				) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				nullDate(r.ReturnDate), r.OrderID, r.CustomerID, r.ProductID, r.Category, r.Region, r.Reason,
			)
			if err != nil {
				return fmt.Errorf("failed to insert return for order %s: %w", r.OrderID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.logger.Info().Int("returns", len(returns)).Msg("Returns fact loaded")
	return nil
}

func upsertProduct(ctx context.Context, tx *sql.Tx, productID, name, category string) error {
	if productID == "" {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO dim_product (product_id, product_name, category)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id) DO UPDATE SET
			product_name = CASE WHEN EXCLUDED.product_name <> '' THEN EXCLUDED.product_name ELSE dim_product.product_name END,
			category = CASE WHEN EXCLUDED.category <> '' THEN EXCLUDED.category ELSE dim_product.category END,
			updated_at = NOW()`,
		productID, name, category,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", productID, err)
	}
	return nil
}

func upsertCustomer(ctx context.Context, tx *sql.Tx, customerID, region, country string) error {
	if customerID == "" {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO dim_customer (customer_id, region, country)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id) DO UPDATE SET
			region = CASE WHEN EXCLUDED.region <> '' THEN EXCLUDED.region ELSE dim_customer.region END,
			country = CASE WHEN EXCLUDED.country <> '' THEN EXCLUDED.country ELSE dim_customer.country END,
			updated_at = NOW()`,
		customerID, region, country,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert customer %s: %w", customerID, err)
	}
	return nil
}

func upsertDate(ctx context.Context, tx *sql.Tx, date time.Time) error {
	if date.IsZero() {
		return nil
	}
	weekday := int(date.Weekday())
	_, err := tx.ExecContext(ctx, `
		INSERT INTO dim_date (date_id, year, month, day, quarter, day_of_week, is_weekend)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (date_id) DO NOTHING`,
		date, date.Year(), int(date.Month()), date.Day(), quarterOf(date), weekday,
		weekday == 0 || weekday == 6,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert date %s: %w", date.Format("2006-01-02"), err)
	}
	return nil
}

func quarterOf(date time.Time) int {
	return (int(date.Month())-1)/3 + 1
}

func nullDate(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
