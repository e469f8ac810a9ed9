package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/topchart/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
//
// Status degrades when the most recent run failed.
func Health(svc Runner, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		last := svc.LastStatus()

		status := "healthy"
		if last == models.StatusFailed {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:     status,
			Uptime:     time.Since(startTime).Round(time.Second).String(),
			ActiveRuns: svc.ActiveRuns(),
			LastStatus: last,
			Version:    Version,
		})
	}
}
