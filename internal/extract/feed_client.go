package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/andresuchdata/supplychain-analytics/internal/domain"
)

// FeedClient pulls source data from the REST feed that mirrors the
// upstream order-management system.
type FeedClient struct {
	baseURL  string
	client   *http.Client
	alertPct float64
	logger   zerolog.Logger
}

// NewFeedClient builds a connector for the feed at baseURL. alertPct is the
// fraction of dropped rows above which data-quality warnings escalate to
// errors; values outside (0, 1] fall back to 0.05.
func NewFeedClient(baseURL string, timeout time.Duration, alertPct float64, logger zerolog.Logger) *FeedClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if alertPct <= 0 || alertPct > 1 {
		alertPct = 0.05
	}
	return &FeedClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		alertPct: alertPct,
		logger:   logger,
	}
}

// Dataset fetches every feed endpoint. Orders are required; a failing
// returns, inventory or people endpoint degrades to an absent dataset
// with a warning instead of failing the whole extraction.
func (c *FeedClient) Dataset(ctx context.Context) (Dataset, error) {
	orders, err := c.Orders(ctx)
	if err != nil {
		return Dataset{}, err
	}

	ds := Dataset{Orders: orders, Returns: domain.NoReturns()}

	returns, err := c.Returns(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Returns feed unavailable, returns will be simulated")
	} else {
		ds.Returns = domain.RealReturns(returns)
	}

	inventory, err := c.Inventory(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Inventory feed unavailable, snapshots will be simulated")
	} else {
		ds.Inventory = inventory
	}

	people, err := c.People(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("People feed unavailable")
	} else {
		ds.People = people
	}

	return ds, nil
}

// Orders fetches and validates the order feed. Rows without an order id or
// order date are dropped and counted, never passed downstream.
func (c *FeedClient) Orders(ctx context.Context) ([]domain.OrderRecord, error) {
	var raw []domain.OrderRecord
	if err := c.getJSON(ctx, "/api/orders", &raw); err != nil {
		return nil, err
	}

	orders := make([]domain.OrderRecord, 0, len(raw))
	skipped := 0
	for _, o := range raw {
		if o.OrderID == "" || o.OrderDate.IsZero() {
			skipped++
			continue
		}
		orders = append(orders, domain.DeriveOrderFields(o))
	}

	if skipped > 0 {
		pct := float64(skipped) / float64(len(raw))
		evt := c.logger.Warn()
		if pct > c.alertPct {
			evt = c.logger.Error()
		}
		evt.Int("skipped", skipped).Float64("skipped_pct", pct).Msg("Order feed rows missing order id or order date")
	}
	c.logger.Info().Int("orders", len(orders)).Msg("Order feed fetched")
	return orders, nil
}

func (c *FeedClient) Returns(ctx context.Context) ([]domain.ReturnRecord, error) {
	var returns []domain.ReturnRecord
	if err := c.getJSON(ctx, "/api/returns", &returns); err != nil {
		return nil, err
	}
	c.logger.Info().Int("returns", len(returns)).Msg("Returns feed fetched")
	return returns, nil
}

// Inventory fetches daily inventory snapshots. Fill rates are clamped at
// this boundary so downstream consumers never see out-of-range ratios.
func (c *FeedClient) Inventory(ctx context.Context) ([]domain.InventoryRecord, error) {
	var inventory []domain.InventoryRecord
	if err := c.getJSON(ctx, "/api/inventory", &inventory); err != nil {
		return nil, err
	}
	for i := range inventory {
		inventory[i].FillRate = domain.ClampFillRate(inventory[i].FillRate)
	}
	c.logger.Info().Int("inventory_rows", len(inventory)).Msg("Inventory feed fetched")
	return inventory, nil
}

func (c *FeedClient) People(ctx context.Context) ([]domain.PersonRecord, error) {
	var people []domain.PersonRecord
	if err := c.getJSON(ctx, "/api/people", &people); err != nil {
		return nil, err
	}
	return people, nil
}

// Analytics fetches the feed's own precomputed analytics block. It is
// logged for comparison against locally computed metrics, never merged
// into them.
func (c *FeedClient) Analytics(ctx context.Context) (map[string]any, error) {
	var analytics map[string]any
	if err := c.getJSON(ctx, "/api/analytics", &analytics); err != nil {
		return nil, err
	}
	return analytics, nil
}

func (c *FeedClient) getJSON(ctx context.Context, path string, out any) error {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", url, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}
