package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_DATA_DIR", t.TempDir())

	cfg := Load()

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Feed.Port != "5001" || cfg.Feed.BaseURL != "http://localhost:5001" {
		t.Errorf("feed defaults = %+v", cfg.Feed)
	}
	if cfg.Feed.MissingDataAlertPct != 0.05 {
		t.Errorf("Feed.MissingDataAlertPct = %v, want 0.05", cfg.Feed.MissingDataAlertPct)
	}
	if cfg.Metrics.LeadTimeExcellentDays != 3 || cfg.Metrics.LeadTimeGoodDays != 7 {
		t.Errorf("lead time thresholds = %d/%d, want 3/7",
			cfg.Metrics.LeadTimeExcellentDays, cfg.Metrics.LeadTimeGoodDays)
	}
	if cfg.Metrics.FillRateExcellent != 0.95 || cfg.Metrics.FillRateGood != 0.85 {
		t.Errorf("fill rate thresholds = %v/%v, want 0.95/0.85",
			cfg.Metrics.FillRateExcellent, cfg.Metrics.FillRateGood)
	}
	if cfg.Cache.Enabled {
		t.Error("cache must default to disabled")
	}
	if cfg.App.Source != "demo" {
		t.Errorf("App.Source = %q, want demo", cfg.App.Source)
	}
}
