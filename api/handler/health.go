package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arkaf/wantmeta/cache"
)

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string      `json:"status"`
	Uptime  string      `json:"uptime"`
	Cache   cache.Stats `json:"cache"`
	Version string      `json:"version"`
}

// Health returns a handler for GET /api/v1/health.
func Health(cc *cache.Cache, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:  "healthy",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Cache:   cc.Stats(),
			Version: "0.1.0",
		})
	}
}
