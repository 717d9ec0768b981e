package postgres

import (
	"context"
	"fmt"
)

// schemaStatements creates the star schema: product/customer/date
// dimensions, order/inventory/return facts, and a snapshot table holding
// serialized metric reports. Statements are idempotent so EnsureSchema can
// run on every pipeline start.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS dim_product (
		product_id   TEXT PRIMARY KEY,
		product_name TEXT NOT NULL DEFAULT '',
		category     TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS dim_customer (
		customer_id TEXT PRIMARY KEY,
		region      TEXT NOT NULL DEFAULT '',
		country     TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS dim_date (
		date_id     DATE PRIMARY KEY,
		year        INT NOT NULL,
		month       INT NOT NULL,
		day         INT NOT NULL,
		quarter     INT NOT NULL,
		day_of_week INT NOT NULL,
		is_weekend  BOOLEAN NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS fact_orders (
		order_id       TEXT NOT NULL,
		order_date     DATE NOT NULL,
		ship_date      DATE,
		delivery_date  DATE,
		customer_id    TEXT NOT NULL DEFAULT '',
		product_id     TEXT NOT NULL DEFAULT '',
		category       TEXT NOT NULL DEFAULT '',
		region         TEXT NOT NULL DEFAULT '',
		country        TEXT NOT NULL DEFAULT '',
		quantity       INT NOT NULL DEFAULT 0,
		sales          DOUBLE PRECISION NOT NULL DEFAULT 0,
		profit         DOUBLE PRECISION NOT NULL DEFAULT 0,
		lead_time_days INT,
		order_value    DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (order_id, product_id, order_date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_fact_orders_category ON fact_orders (category)`,
	`CREATE INDEX IF NOT EXISTS idx_fact_orders_order_date ON fact_orders (order_date)`,
	`CREATE TABLE IF NOT EXISTS fact_inventory (
		date                DATE NOT NULL,
		product_id          TEXT NOT NULL,
		category            TEXT NOT NULL DEFAULT '',
		stock_level         INT NOT NULL DEFAULT 0,
		daily_demand        INT NOT NULL DEFAULT 0,
		fill_rate           DOUBLE PRECISION NOT NULL DEFAULT 0,
		annualized_turnover DOUBLE PRECISION NOT NULL DEFAULT 0,
		stockout_risk       BOOLEAN NOT NULL DEFAULT FALSE,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (date, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS fact_returns (
		return_id   BIGSERIAL PRIMARY KEY,
		return_date DATE,
		order_id    TEXT NOT NULL,
		customer_id TEXT NOT NULL DEFAULT '',
		product_id  TEXT NOT NULL DEFAULT '',
		category    TEXT NOT NULL DEFAULT '',
		region      TEXT NOT NULL DEFAULT '',
		reason      TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_fact_returns_order_id ON fact_returns (order_id)`,
	`CREATE TABLE IF NOT EXISTS metrics_snapshots (
		id         BIGSERIAL PRIMARY KEY,
		source     TEXT NOT NULL,
		report     JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_metrics_snapshots_source ON metrics_snapshots (source, created_at DESC)`,
}

// martStatements build the reporting views over the facts. They mirror the
// per-category aggregations the metrics engine computes, so dashboards can
// query the warehouse directly.
var martStatements = []string{
	`CREATE OR REPLACE VIEW mart_category_performance AS
	SELECT
		o.category,
		COUNT(DISTINCT o.order_id)                        AS total_orders,
		SUM(o.quantity)                                   AS total_items,
		SUM(o.sales)                                      AS total_sales,
		SUM(o.profit)                                     AS total_profit,
		AVG(o.lead_time_days)                             AS avg_lead_time,
		COUNT(DISTINCT r.order_id)                        AS returned_orders,
		CASE WHEN COUNT(DISTINCT o.order_id) > 0
			THEN COUNT(DISTINCT r.order_id)::float / COUNT(DISTINCT o.order_id)
			ELSE 0
		END                                               AS return_rate
	FROM fact_orders o
	LEFT JOIN fact_returns r ON o.order_id = r.order_id
	GROUP BY o.category`,
	`CREATE OR REPLACE VIEW mart_inventory_analysis AS
	SELECT
		i.category,
		AVG(i.stock_level)                                AS avg_stock_level,
		AVG(i.daily_demand)                               AS avg_daily_demand,
		AVG(i.fill_rate)                                  AS avg_fill_rate,
		AVG(i.annualized_turnover)                        AS avg_turnover,
		SUM(CASE WHEN i.stockout_risk THEN 1 ELSE 0 END)  AS stockout_risk_count,
		COUNT(*)                                          AS total_records
	FROM fact_inventory i
	GROUP BY i.category`,
	`CREATE OR REPLACE VIEW mart_fulfillment_monthly AS
	SELECT
		DATE_TRUNC('month', o.order_date)                 AS month,
		o.category,
		COUNT(DISTINCT o.order_id)                        AS total_orders,
		AVG(o.lead_time_days)                             AS avg_lead_time,
		SUM(o.sales)                                      AS total_sales,
		COUNT(DISTINCT o.customer_id)                     AS unique_customers
	FROM fact_orders o
	GROUP BY DATE_TRUNC('month', o.order_date), o.category`,
}

// EnsureSchema creates tables, indexes and reporting views if they do not
// already exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	for _, stmt := range martStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create mart view: %w", err)
		}
	}
	return nil
}
