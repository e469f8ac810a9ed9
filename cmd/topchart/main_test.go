package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/topchart/config"
	"github.com/use-agent/topchart/models"
	"github.com/use-agent/topchart/output"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), tt.in)
	}
}

func TestApplyScrapeFlags_OnlyChanged(t *testing.T) {
	cfg := config.Load()
	cfg.Output.Path = "keep.csv"
	cmd := newScrapeCommand(cfg)

	require.NoError(t, cmd.Flags().Parse([]string{"--fetch-mode", "http", "--max-rows", "10", "--timeout", "30s", "--headless=false"}))
	var flags scrapeFlags
	flags.fetchMode, _ = cmd.Flags().GetString("fetch-mode")
	flags.maxRows, _ = cmd.Flags().GetInt("max-rows")
	flags.timeout, _ = cmd.Flags().GetDuration("timeout")
	flags.headless, _ = cmd.Flags().GetBool("headless")
	applyScrapeFlags(cmd, cfg, &flags)

	assert.Equal(t, models.FetchModeHTTP, cfg.Scraper.FetchMode)
	assert.Equal(t, 10, cfg.Scraper.MaxRows)
	assert.Equal(t, 30*time.Second, cfg.Scraper.Timeout)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "keep.csv", cfg.Output.Path)
}

func TestNewApp_RejectsBadLocators(t *testing.T) {
	cfg := config.Load()
	cfg.Output.Path = filepath.Join(t.TempDir(), "out.csv")
	cfg.Scraper.RowLocators = []string{"li[["}

	_, err := newApp(cfg, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row locators")
}

func TestNewApp_RejectsUnknownFormat(t *testing.T) {
	cfg := config.Load()
	cfg.Output.Format = "xlsx"

	_, err := newApp(cfg, false)
	require.Error(t, err)
}

func TestNewApp_DefaultPathFollowsFormat(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg := config.Load()
	cfg.Output.Path = ""

	cmd := newScrapeCommand(cfg)
	require.NoError(t, cmd.Flags().Parse([]string{"--format", "sqlite"}))
	flags := scrapeFlags{format: "sqlite"}
	applyScrapeFlags(cmd, cfg, &flags)

	a, err := newApp(cfg, false)
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, "imdb_top_250.db", a.sink.Path())
}

func TestHistoryCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := output.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Write(context.Background(), &models.ScrapeResponse{
		Success:    true,
		Status:     models.StatusCompleted,
		SourceURL:  config.DefaultChartURL,
		EngineUsed: "rod",
		RowLocator: "li.ipc-metadata-list-summary-item",
		RowsFound:  2,
		Movies: []models.Movie{
			{Rank: 1, Title: "The Shawshank Redemption", ReleaseYear: "1994", Rating: "9.3", Votes: "N/A"},
			{Rank: 2, Title: "The Godfather", ReleaseYear: "1972", Rating: "9.2", Votes: "N/A"},
		},
	}))
	require.NoError(t, store.Close())

	cfg := config.Load()
	cmd := newHistoryCommand(cfg)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--db", path, "--limit", "1"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	got := out.String()
	assert.Contains(t, got, "Engine:  rod")
	assert.Contains(t, got, "The Shawshank Redemption")
	assert.False(t, strings.Contains(got, "The Godfather"), "limit should cut the table")
}

func TestHistoryCommand_MissingFile(t *testing.T) {
	cmd := newHistoryCommand(config.Load())
	cmd.SetArgs([]string{"--db", filepath.Join(t.TempDir(), "nope.db")})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}
