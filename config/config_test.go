package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Scraper.ChartURL != DefaultChartURL {
		t.Errorf("ChartURL = %q", cfg.Scraper.ChartURL)
	}
	if cfg.Scraper.MaxRows != 250 || cfg.Scraper.ScrollLimit != 3 {
		t.Errorf("MaxRows/ScrollLimit = %d/%d", cfg.Scraper.MaxRows, cfg.Scraper.ScrollLimit)
	}
	if cfg.Scraper.ReadyTimeout != 15*time.Second || cfg.Scraper.SettleDelay != 3*time.Second {
		t.Errorf("ReadyTimeout/SettleDelay = %s/%s", cfg.Scraper.ReadyTimeout, cfg.Scraper.SettleDelay)
	}
	if cfg.Output.Path != "" || cfg.Output.Format != "csv" {
		t.Errorf("output = %q (%s)", cfg.Output.Path, cfg.Output.Format)
	}
	if got := cfg.Output.ResolvedPath(); got != "imdb_top_250.csv" {
		t.Errorf("ResolvedPath = %q", got)
	}
	if cfg.Output.DebugScreenshot != "imdb_debug.png" || cfg.Output.ErrorScreenshot != "imdb_error.png" {
		t.Errorf("screenshots = %q, %q", cfg.Output.DebugScreenshot, cfg.Output.ErrorScreenshot)
	}
	if len(cfg.Scraper.RowLocators) != 0 {
		t.Errorf("RowLocators should default to empty, got %v", cfg.Scraper.RowLocators)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TOPCHART_FETCH_MODE", "auto")
	t.Setenv("TOPCHART_MAX_ROWS", "100")
	t.Setenv("TOPCHART_HEADLESS", "false")
	t.Setenv("TOPCHART_SCROLL_PAUSE", "500ms")
	t.Setenv("TOPCHART_ROW_LOCATORS", " li.a , ,tr.b ")
	t.Setenv("TOPCHART_RATE_RPS", "1.5")

	cfg := Load()

	if cfg.Scraper.FetchMode != "auto" {
		t.Errorf("FetchMode = %q", cfg.Scraper.FetchMode)
	}
	if cfg.Scraper.MaxRows != 100 {
		t.Errorf("MaxRows = %d", cfg.Scraper.MaxRows)
	}
	if cfg.Browser.Headless {
		t.Error("Headless should be false")
	}
	if cfg.Scraper.ScrollPause != 500*time.Millisecond {
		t.Errorf("ScrollPause = %s", cfg.Scraper.ScrollPause)
	}
	if got := cfg.Scraper.RowLocators; len(got) != 2 || got[0] != "li.a" || got[1] != "tr.b" {
		t.Errorf("RowLocators = %v", got)
	}
	if cfg.RateLimit.RequestsPerSecond != 1.5 {
		t.Errorf("RequestsPerSecond = %v", cfg.RateLimit.RequestsPerSecond)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("TOPCHART_MAX_ROWS", "lots")
	t.Setenv("TOPCHART_TIMEOUT", "soon")

	cfg := Load()

	if cfg.Scraper.MaxRows != 250 {
		t.Errorf("MaxRows = %d, want fallback 250", cfg.Scraper.MaxRows)
	}
	if cfg.Scraper.Timeout != 90*time.Second {
		t.Errorf("Timeout = %s, want fallback 90s", cfg.Scraper.Timeout)
	}
}

func TestOutputConfig_ResolvedPath(t *testing.T) {
	tests := []struct {
		format string
		path   string
		want   string
	}{
		{"csv", "", "imdb_top_250.csv"},
		{"", "", "imdb_top_250.csv"},
		{"json", "", "imdb_top_250.json"},
		{"markdown", "", "imdb_top_250.md"},
		{"sqlite", "", "imdb_top_250.db"},
		{"sqlite", "runs/top.sqlite", "runs/top.sqlite"},
	}
	for _, tt := range tests {
		o := OutputConfig{Path: tt.path, Format: tt.format}
		if got := o.ResolvedPath(); got != tt.want {
			t.Errorf("ResolvedPath(%q, %q) = %q, want %q", tt.format, tt.path, got, tt.want)
		}
	}
}

func TestLoad_OutputPathFromEnv(t *testing.T) {
	t.Setenv("TOPCHART_OUTPUT", "/tmp/chart.csv")
	t.Setenv("TOPCHART_OUTPUT_FORMAT", "json")

	if got := Load().Output.ResolvedPath(); got != "/tmp/chart.csv" {
		t.Errorf("ResolvedPath = %q, an explicit path is kept as is", got)
	}
}
