package main

import (
	"testing"
	"time"
)

func TestReportExportKey(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 30, 45, 0, time.UTC)

	got := reportExportKey("feed", now)
	want := "reports/feed_20240315T093045Z.json"
	if got != want {
		t.Errorf("reportExportKey() = %q, want %q", got, want)
	}
}
