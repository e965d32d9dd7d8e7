package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arkaf/wantmeta/extractor"
	"github.com/arkaf/wantmeta/models"
)

// Extract returns the handler for GET /extract?url=<target>.
//
// This is the one call the wishlist UI and item-storage backend consume.
// The response is never HTTP-cacheable: freshness is governed solely by
// the internal cache's TTL.
func Extract(ex *extractor.Extractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store, no-cache, must-revalidate")
		c.Header("Pragma", "no-cache")

		target := c.Query("url")
		if target == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing url"})
			return
		}

		result, _, err := ex.Extract(c.Request.Context(), target)
		if err != nil {
			var exErr *models.ExtractError
			if errors.As(err, &exErr) && exErr.Code == models.ErrCodeInvalidInput {
				c.JSON(http.StatusBadRequest, gin.H{"error": "missing url"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch content"})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
