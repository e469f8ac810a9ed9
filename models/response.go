package models

// Run statuses reported in ScrapeResponse.Status.
const (
	StatusCompleted = "completed"
	StatusEmpty     = "empty"
	StatusFailed    = "failed"
)

// ScrapeResponse is the outcome of one extraction run.
type ScrapeResponse struct {
	// Success is false only for run-level failures.
	Success bool `json:"success"`

	// Status is "completed", "empty" (no rows matched) or "failed".
	Status string `json:"status"`

	// SourceURL is the chart page that was scraped.
	SourceURL string `json:"source_url"`

	// EngineUsed is the engine that produced the document ("http", "rod").
	EngineUsed string `json:"engine_used,omitempty"`

	// RowLocator is the container locator that matched the rows.
	RowLocator string `json:"row_locator,omitempty"`

	// RowsFound is the number of row handles visited.
	RowsFound int `json:"rows_found"`

	// Skipped counts rows without a title or with a row-level fault.
	Skipped int `json:"skipped"`

	// LayoutFingerprint is a hex SimHash of the first row's markup.
	LayoutFingerprint string `json:"layout_fingerprint,omitempty"`

	// Movies is ordered by rank.
	Movies []Movie `json:"movies"`

	// Summary holds aggregate statistics over Movies.
	Summary Summary `json:"summary"`

	// Screenshot is the diagnostic image path, if one was captured.
	Screenshot string `json:"screenshot,omitempty"`

	// OutputPath is the file the movies were written to, if any.
	OutputPath string `json:"output_path,omitempty"`

	// Timing provides duration breakdowns for the run.
	Timing TimingInfo `json:"timing"`

	// CacheStatus is "hit", "miss" or empty when caching was not requested.
	CacheStatus string `json:"cache_status,omitempty"`

	// Error describes a run-level failure (Success false) or a result file
	// that could not be written (Success true, code OUTPUT_FAILED).
	Error *ErrorDetail `json:"error,omitempty"`
}

// Summary aggregates the parsable values of a result set.
type Summary struct {
	Total int `json:"total"`

	// AverageRating is computed over ratings that parse as numbers.
	AverageRating float64 `json:"average_rating"`
	RatedCount    int     `json:"rated_count"`

	// MinYear and MaxYear are zero when no year parsed.
	MinYear int `json:"min_year,omitempty"`
	MaxYear int `json:"max_year,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// FetchMs covers navigation, settling and scrolling.
	FetchMs int64 `json:"fetch_ms"`

	// ExtractMs covers row collection and field extraction.
	ExtractMs int64 `json:"extract_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status     string `json:"status"` // "healthy" or "degraded"
	Uptime     string `json:"uptime"`
	ActiveRuns int    `json:"active_runs"`
	LastStatus string `json:"last_status,omitempty"`
	Version    string `json:"version"`
}
