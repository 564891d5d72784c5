package service

import (
	"sync"

	"github.com/wasender/wablast-backend/internal/model"
)

// DeliveryTracker owns the ordered result log of one operation and the
// aggregate counters derived from it.
type DeliveryTracker struct {
	mu      sync.Mutex
	total   int
	sent    int
	failed  int
	results []model.SendResult
}

// TrackerSnapshot is a value copy for polling callers.
type TrackerSnapshot struct {
	Total           int                `json:"total"`
	Processed       int                `json:"processed"`
	Sent            int                `json:"sent"`
	Failed          int                `json:"failed"`
	ProgressPercent float64            `json:"progress_percent"`
	Results         []model.SendResult `json:"results"`
}

func NewDeliveryTracker(total int) *DeliveryTracker {
	return &DeliveryTracker{total: total}
}

// Record appends a result and updates the counters. Results are immutable
// once recorded.
func (t *DeliveryTracker) Record(res model.SendResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.results = append(t.results, res)
	if res.Success {
		t.sent++
	} else {
		t.failed++
	}
}

// Snapshot copies out the result log and aggregates.
func (t *DeliveryTracker) Snapshot() TrackerSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	results := make([]model.SendResult, len(t.results))
	copy(results, t.results)
	processed := t.sent + t.failed
	return TrackerSnapshot{
		Total:           t.total,
		Processed:       processed,
		Sent:            t.sent,
		Failed:          t.failed,
		ProgressPercent: progressPercent(processed, t.total),
		Results:         results,
	}
}

// progressPercent is 0 for an empty batch, never NaN.
func progressPercent(processed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(processed) / float64(total) * 100
}
