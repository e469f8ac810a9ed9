package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/topchart/api/handler"
	"github.com/use-agent/topchart/api/middleware"
	"github.com/use-agent/topchart/config"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit (scrape only)
//
// Health stays outside auth so monitoring probes always work.
func NewRouter(svc handler.Runner, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(svc, startTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}

	protected.GET("/movies", handler.Movies(svc))
	protected.POST("/scrape", middleware.RateLimit(cfg.RateLimit), handler.Scrape(svc))

	return r
}
