package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arkaf/wantmeta/config"
	"github.com/arkaf/wantmeta/extractor"
	"github.com/arkaf/wantmeta/models"
	"github.com/arkaf/wantmeta/webhook"
)

// refreshStore holds all in-flight and completed refresh jobs.
var refreshStore sync.Map

func init() {
	// Background goroutine to expire refresh jobs older than 1 hour.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour).Unix()
			refreshStore.Range(func(key, value any) bool {
				job := value.(*models.RefreshJob)
				if job.CreatedAt < cutoff {
					refreshStore.Delete(key)
				}
				return true
			})
		}
	}()
}

// PostRefresh returns a handler for POST /api/v1/refresh.
// It validates the request, creates a refresh job, and launches goroutines
// to re-extract each URL concurrently.
func PostRefresh(ex *extractor.Extractor, cfg config.RefreshConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		jobID := "refresh-" + randomID()
		job := &models.RefreshJob{
			ID:        jobID,
			Status:    "processing",
			Total:     len(req.URLs),
			Items:     make([]*models.RefreshItem, len(req.URLs)),
			Webhook:   req.Webhook,
			CreatedAt: time.Now().Unix(),
		}
		refreshStore.Store(jobID, job)

		go runRefresh(ex, job, req.URLs, cfg.MaxConcurrent)

		c.JSON(http.StatusOK, models.RefreshResponse{
			ID:     jobID,
			Status: "processing",
			Total:  len(req.URLs),
		})
	}
}

// GetRefresh returns a handler for GET /api/v1/refresh/:id.
func GetRefresh() gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := c.Param("id")
		val, ok := refreshStore.Load(jobID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "refresh job not found",
				},
			})
			return
		}

		job := val.(*models.RefreshJob)
		c.JSON(http.StatusOK, job.Snapshot())
	}
}

// runRefresh extracts all URLs in a job with concurrency limited by a
// semaphore, then fires the completion webhook if one was requested.
func runRefresh(ex *extractor.Extractor, job *models.RefreshJob, urls []string, maxConcurrent int) {
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	sem := make(chan struct{}, maxConcurrent)

	var wg sync.WaitGroup
	var completed atomic.Int32
	var failed atomic.Int32

	for i, rawURL := range urls {
		wg.Add(1)
		go func(idx int, targetURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			item := &models.RefreshItem{URL: targetURL}
			result, _, err := ex.Extract(context.Background(), targetURL)
			if err != nil {
				var exErr *models.ExtractError
				if !errors.As(err, &exErr) {
					exErr = models.NewExtractError(models.ErrCodeInternal, err.Error(), err)
				}
				item.Error = exErr.ToDetail()
				failed.Add(1)
			} else {
				item.Result = result
				completed.Add(1)
			}
			job.SetItem(idx, item, int(completed.Load())+int(failed.Load()))
		}(i, rawURL)
	}

	wg.Wait()

	failedCount := int(failed.Load())
	var status string
	switch {
	case failedCount == job.Total:
		status = "failed"
	case failedCount > 0:
		status = "partial"
	default:
		status = "completed"
	}
	job.Finish(status)

	slog.Info("refresh job finished",
		"id", job.ID,
		"status", status,
		"failed", failedCount,
		"total", job.Total,
	)

	if job.Webhook != nil {
		webhook.DeliverAsync(job.Webhook.URL, job.Webhook.Secret, &webhook.Event{
			Type:      "refresh." + status,
			JobID:     job.ID,
			Timestamp: time.Now().Unix(),
			Data:      job.Snapshot(),
		})
	}
}

// randomID generates a short random hex string for job IDs.
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
