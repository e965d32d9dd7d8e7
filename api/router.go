package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arkaf/wantmeta/api/handler"
	"github.com/arkaf/wantmeta/api/middleware"
	"github.com/arkaf/wantmeta/cache"
	"github.com/arkaf/wantmeta/config"
	"github.com/arkaf/wantmeta/extractor"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger → RateLimit
//	/extract: CORS (permissive; the wishlist UI calls it cross-origin)
//	/api/v1:  Auth (if enabled)
//
// The extract endpoint stays outside auth on purpose — it is the public
// contract the wishlist client consumes directly. Health is outside auth
// so monitoring probes always work.
func NewRouter(ex *extractor.Extractor, cc *cache.Cache, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RateLimit(cfg.RateLimit))

	// Public extraction contract.
	extract := r.Group("/extract")
	extract.Use(middleware.CORS())
	extract.GET("", handler.Extract(ex))
	extract.OPTIONS("", func(*gin.Context) {}) // preflight answered by CORS middleware

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(cc, startTime))

	// Protected group.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}

	// Refresh
	protected.POST("/refresh", handler.PostRefresh(ex, cfg.Refresh))
	protected.GET("/refresh/:id", handler.GetRefresh())

	return r
}
