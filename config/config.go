package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultChartURL is the page scraped when no URL is configured.
const DefaultChartURL = "https://www.imdb.com/chart/top/"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Output    OutputConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
	Webhook   WebhookConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: true

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is the proxy URL for browser and HTTP fetches.
	Proxy string

	// UserAgent replaces the automation-revealing default user agent.
	UserAgent string
}

// ScraperConfig controls one extraction run.
type ScraperConfig struct {
	// ChartURL is the page to scrape.
	ChartURL string // default: DefaultChartURL

	// FetchMode is "browser", "http" or "auto"; default: "browser".
	FetchMode string

	// Timeout bounds a whole run.
	Timeout time.Duration // default: 90s

	// ReadyTimeout bounds the wait for each readiness locator.
	ReadyTimeout time.Duration // default: 15s

	// ReadyLocators are waited for in order until one appears.
	ReadyLocators []string // default: ["h3.ipc-title__text", ".cli-title"]

	// SettleDelay lets client-side scripts finish after readiness.
	SettleDelay time.Duration // default: 3s

	// ScrollLimit caps the scroll iterations used to trigger lazy loading.
	ScrollLimit int // default: 3

	// ScrollPause is the wait after each scroll.
	ScrollPause time.Duration // default: 2s

	// MaxRows bounds the rows visited.
	MaxRows int // default: 250

	// RowLocators overrides the row container locators when non-empty.
	RowLocators []string

	// BlockedResourceTypes lists resource types the browser will not load.
	// default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string

	// BlockAds drops requests to known ad and tracking hosts.
	BlockAds bool // default: true
}

// OutputConfig controls persistence and diagnostics.
type OutputConfig struct {
	// Path is the result file, overwritten on each run. Empty selects
	// DefaultOutputBase with the extension of Format.
	Path string

	// Format is "csv", "json", "markdown" or "sqlite"; default: "csv".
	Format string

	// DebugScreenshot is written when no row container matched.
	DebugScreenshot string // default: "imdb_debug.png"

	// ErrorScreenshot is written when the run fails after the page opened.
	ErrorScreenshot string // default: "imdb_error.png"

	// SampleSize is the number of records printed in the console summary.
	SampleSize int // default: 5
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 0.2

	// Burst is the maximum burst size per API key.
	Burst int // default: 2
}

// CacheConfig controls the scrape response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 32

	// TTL is how long an entry may live regardless of the requested max age.
	TTL time.Duration // default: 1h
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// WebhookConfig controls run notifications.
type WebhookConfig struct {
	// URL receives a POST per finished run. Empty disables notifications.
	URL string

	// Secret signs the payload with HMAC-SHA256 when set.
	Secret string

	// Timeout bounds a single delivery.
	Timeout time.Duration // default: 10s
}

// DefaultOutputBase names the result file when no path is configured.
const DefaultOutputBase = "imdb_top_250"

// ResolvedPath returns Path, or DefaultOutputBase with the extension that
// matches Format.
func (o OutputConfig) ResolvedPath() string {
	if o.Path != "" {
		return o.Path
	}
	return DefaultOutputBase + OutputExt(o.Format)
}

// OutputExt maps an output format to its file extension.
func OutputExt(format string) string {
	switch format {
	case "json":
		return ".json"
	case "markdown":
		return ".md"
	case "sqlite":
		return ".db"
	default:
		return ".csv"
	}
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("TOPCHART_HOST", "0.0.0.0"),
			Port: envIntOr("TOPCHART_PORT", 8080),
			Mode: envOr("TOPCHART_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:   envBoolOr("TOPCHART_HEADLESS", true),
			NoSandbox:  envBoolOr("TOPCHART_NO_SANDBOX", true),
			BrowserBin: os.Getenv("TOPCHART_BROWSER_BIN"),
			Proxy:      os.Getenv("TOPCHART_PROXY"),
			UserAgent: envOr("TOPCHART_USER_AGENT",
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		},
		Scraper: ScraperConfig{
			ChartURL:      envOr("TOPCHART_URL", DefaultChartURL),
			FetchMode:     envOr("TOPCHART_FETCH_MODE", "browser"),
			Timeout:       envDurationOr("TOPCHART_TIMEOUT", 90*time.Second),
			ReadyTimeout:  envDurationOr("TOPCHART_READY_TIMEOUT", 15*time.Second),
			ReadyLocators: envSliceOr("TOPCHART_READY_LOCATORS", []string{"h3.ipc-title__text", ".cli-title"}),
			SettleDelay:   envDurationOr("TOPCHART_SETTLE_DELAY", 3*time.Second),
			ScrollLimit:   envIntOr("TOPCHART_SCROLL_LIMIT", 3),
			ScrollPause:   envDurationOr("TOPCHART_SCROLL_PAUSE", 2*time.Second),
			MaxRows:       envIntOr("TOPCHART_MAX_ROWS", 250),
			RowLocators:   envSliceOr("TOPCHART_ROW_LOCATORS", nil),
			BlockedResourceTypes: envSliceOr("TOPCHART_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
			BlockAds: envBoolOr("TOPCHART_BLOCK_ADS", true),
		},
		Output: OutputConfig{
			Path:            envOr("TOPCHART_OUTPUT", ""),
			Format:          envOr("TOPCHART_OUTPUT_FORMAT", "csv"),
			DebugScreenshot: envOr("TOPCHART_DEBUG_SCREENSHOT", "imdb_debug.png"),
			ErrorScreenshot: envOr("TOPCHART_ERROR_SCREENSHOT", "imdb_error.png"),
			SampleSize:      envIntOr("TOPCHART_SAMPLE_SIZE", 5),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("TOPCHART_AUTH_ENABLED", true),
			APIKeys: envSliceOr("TOPCHART_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("TOPCHART_RATE_RPS", 0.2),
			Burst:             envIntOr("TOPCHART_RATE_BURST", 2),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("TOPCHART_CACHE_MAX_ENTRIES", 32),
			TTL:        envDurationOr("TOPCHART_CACHE_TTL", time.Hour),
		},
		Log: LogConfig{
			Level:  envOr("TOPCHART_LOG_LEVEL", "info"),
			Format: envOr("TOPCHART_LOG_FORMAT", "text"),
		},
		Webhook: WebhookConfig{
			URL:     os.Getenv("TOPCHART_WEBHOOK_URL"),
			Secret:  os.Getenv("TOPCHART_WEBHOOK_SECRET"),
			Timeout: envDurationOr("TOPCHART_WEBHOOK_TIMEOUT", 10*time.Second),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
