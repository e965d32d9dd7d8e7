package models

import "sync"

// RefreshRequest is the payload for POST /api/v1/refresh.
// The wishlist backend uses it to re-extract every saved item in one call.
type RefreshRequest struct {
	// URLs is the list of item URLs to re-extract. Required.
	URLs []string `json:"urls" binding:"required,min=1,max=100"`

	// Webhook, if set, receives a signed "refresh.completed" event
	// when the job finishes.
	Webhook *WebhookTarget `json:"webhook,omitempty"`
}

// WebhookTarget configures webhook delivery for a refresh job.
type WebhookTarget struct {
	URL    string `json:"url" binding:"required,url"`
	Secret string `json:"secret,omitempty"`
}

// RefreshResponse is the immediate response for POST /api/v1/refresh.
type RefreshResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// RefreshItem is the per-URL outcome inside a refresh job.
type RefreshItem struct {
	URL    string            `json:"url"`
	Result *ExtractionResult `json:"result,omitempty"`
	Error  *ErrorDetail      `json:"error,omitempty"`
}

// RefreshStatusResponse is the response for GET /api/v1/refresh/:id.
type RefreshStatusResponse struct {
	ID        string         `json:"id"`
	Status    string         `json:"status"`
	Completed int            `json:"completed"`
	Total     int            `json:"total"`
	Items     []*RefreshItem `json:"items,omitempty"`
}

// RefreshJob tracks an in-progress refresh operation. Worker goroutines
// record outcomes while status requests read the same job, so all mutable
// state goes through the mutex-holding accessors; ID, Total, Webhook, and
// CreatedAt are set once before the job is published and never change.
type RefreshJob struct {
	mu        sync.Mutex
	ID        string
	Status    string // "processing", "completed", "partial", "failed"
	Total     int
	Completed int
	Items     []*RefreshItem
	Webhook   *WebhookTarget
	CreatedAt int64 // unix timestamp
}

// SetItem records one URL's outcome and the progress count. The item must
// not be mutated after it is handed over.
func (j *RefreshJob) SetItem(idx int, item *RefreshItem, completed int) {
	j.mu.Lock()
	j.Items[idx] = item
	j.Completed = completed
	j.mu.Unlock()
}

// Finish marks the job's terminal status.
func (j *RefreshJob) Finish(status string) {
	j.mu.Lock()
	j.Status = status
	j.Completed = j.Total
	j.mu.Unlock()
}

// Snapshot returns a consistent view of the job for serialization.
func (j *RefreshJob) Snapshot() RefreshStatusResponse {
	j.mu.Lock()
	defer j.mu.Unlock()
	items := make([]*RefreshItem, len(j.Items))
	copy(items, j.Items)
	return RefreshStatusResponse{
		ID:        j.ID,
		Status:    j.Status,
		Completed: j.Completed,
		Total:     j.Total,
		Items:     items,
	}
}
