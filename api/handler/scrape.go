package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/topchart/models"
)

// Runner is the part of chart.Service the handlers need.
type Runner interface {
	Scrape(ctx context.Context, req *models.ScrapeRequest) (*models.ScrapeResponse, error)
	ActiveRuns() int
	LastStatus() string
	Latest() *models.ScrapeResponse
}

// Scrape returns a handler for POST /api/v1/scrape.
//
// An empty body scrapes the configured chart with defaults. Runs that find
// no rows answer 200 with status "empty"; run-level failures map to an
// error status and still carry the partial response.
func Scrape(svc Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScrapeRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, models.ScrapeResponse{
					Success: false,
					Status:  models.StatusFailed,
					Error: &models.ErrorDetail{
						Code:    models.ErrCodeInvalidInput,
						Message: err.Error(),
					},
				})
				return
			}
		}

		resp, err := svc.Scrape(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err, resp)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// Movies returns a handler for GET /api/v1/movies: the latest completed run.
func Movies(svc Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		latest := svc.Latest()
		if latest == nil {
			c.JSON(http.StatusNotFound, models.ScrapeResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeNoRows,
					Message: "no completed run yet: POST /api/v1/scrape first",
				},
			})
			return
		}
		c.JSON(http.StatusOK, latest)
	}
}

// respondError maps a ScrapeError to the correct HTTP status code and writes
// the response, falling back to a bare error body.
func respondError(c *gin.Context, err error, resp *models.ScrapeResponse) {
	scrapeErr := models.AsScrapeError(err, models.ErrCodeInternal)
	if resp == nil {
		resp = &models.ScrapeResponse{Status: models.StatusFailed}
	}
	resp.Success = false
	resp.Error = scrapeErr.ToDetail()
	c.JSON(mapErrorToStatus(scrapeErr), resp)
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeBrowserCrash:
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500
	}
}
