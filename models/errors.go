package models

import (
	"errors"
	"fmt"
)

// Run-level error codes. They appear in ScrapeResponse.Error and drive the
// HTTP status chosen by the API.
const (
	// ErrCodeTimeout: the run deadline expired or the caller cancelled.
	ErrCodeTimeout = "SCRAPE_TIMEOUT"
	// ErrCodeNavigation: the chart page could not be loaded.
	ErrCodeNavigation = "NAVIGATION_FAILED"
	// ErrCodeBrowserCrash: the browser failed to launch or the page detached.
	ErrCodeBrowserCrash = "BROWSER_CRASH"
	// ErrCodeNoRows: nothing to serve yet.
	ErrCodeNoRows = "NO_ROWS"
	// ErrCodeOutput: movies were extracted but could not be persisted.
	// Runs carrying it are still successful.
	ErrCodeOutput = "OUTPUT_FAILED"

	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScrapeError is a run failure tagged with one of the ErrCode values.
type ScrapeError struct {
	Code    string
	Message string
	Err     error
}

func (e *ScrapeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// AsScrapeError returns the ScrapeError in err's chain, or wraps err under
// fallback when there is none. It returns nil for a nil err.
func AsScrapeError(err error, fallback string) *ScrapeError {
	if err == nil {
		return nil
	}
	var se *ScrapeError
	if errors.As(err, &se) {
		return se
	}
	return NewScrapeError(fallback, err.Error(), err)
}

// ToDetail converts the error to its API-facing form.
func (e *ScrapeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}
