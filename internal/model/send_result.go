// internal/model/send_result.go
package model

import "time"

// SendResult is the outcome of one delivery attempt. Results are appended to
// the tracker's ordered log and never mutated afterwards.
type SendResult struct {
	Phone           string    `json:"phone"`
	Success         bool      `json:"success"`
	AttachmentsSent int       `json:"attachments_sent"`
	DelaySeconds    float64   `json:"delay_applied"`
	Error           string    `json:"error,omitempty"`
	SentAt          time.Time `json:"sent_at"`
}

// HistoryEntry is one SendResult persisted by the report worker.
type HistoryEntry struct {
	ID              int64     `json:"id"`
	OperationID     string    `json:"operation_id"`
	OwnerID         string    `json:"owner_id"`
	Phone           string    `json:"phone"`
	Success         bool      `json:"success"`
	AttachmentsSent int       `json:"attachments_sent"`
	DelaySeconds    float64   `json:"delay_applied"`
	LastError       string    `json:"last_error,omitempty"`
	SentAt          time.Time `json:"sent_at"`
	CreatedAt       time.Time `json:"created_at"`
}
