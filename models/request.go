package models

// Fetch modes accepted by ScrapeRequest.FetchMode.
const (
	FetchModeBrowser = "browser"
	FetchModeHTTP    = "http"
	FetchModeAuto    = "auto"
)

// ScrapeRequest describes one extraction run. The CLI builds it from flags,
// the API binds it from POST /api/v1/scrape.
type ScrapeRequest struct {
	// URL is the chart page. Defaults to the configured chart URL.
	URL string `json:"url,omitempty" binding:"omitempty,url"`

	// FetchMode selects how the page is obtained.
	// "browser" (default): headless Chrome, full JS rendering.
	// "http": plain HTTP with a Chrome TLS fingerprint, static HTML only.
	// "auto": try "http" first and use the browser when no rows are found.
	FetchMode string `json:"fetch_mode,omitempty" binding:"omitempty,oneof=browser http auto"`

	// Timeout is the maximum duration in seconds for the whole run.
	// Default: 90. Max: 300.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=300"`

	// MaxRows bounds how many rows are visited. Default: 250.
	MaxRows int `json:"max_rows,omitempty" binding:"omitempty,min=1,max=250"`

	// Stealth enables navigator.webdriver masking and friends. Default: true.
	Stealth *bool `json:"stealth,omitempty"`

	// MaxAge is the acceptable age of a cached result in milliseconds.
	// Zero disables the cache lookup.
	MaxAge int `json:"max_age,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *ScrapeRequest) Defaults(chartURL string) {
	if r.URL == "" {
		r.URL = chartURL
	}
	if r.FetchMode == "" {
		r.FetchMode = FetchModeBrowser
	}
	if r.Timeout == 0 {
		r.Timeout = 90
	}
	if r.MaxRows == 0 {
		r.MaxRows = 250
	}
	if r.Stealth == nil {
		t := true
		r.Stealth = &t
	}
}
