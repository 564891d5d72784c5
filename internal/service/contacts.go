package service

import (
	"sync"

	"github.com/wasender/wablast-backend/internal/model"
)

// ContactQueue is the ordered batch of recipients for one operation. Order
// follows the submitted list; Next never hands out the same entry twice,
// including across pause/resume.
type ContactQueue struct {
	mu      sync.Mutex
	entries []*model.ContactEntry
	next    int
}

func NewContactQueue(entries []*model.ContactEntry) *ContactQueue {
	return &ContactQueue{entries: entries}
}

// Next returns the next unconsumed entry, or false when the queue is drained.
func (q *ContactQueue) Next() (*model.ContactEntry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.next >= len(q.entries) {
		return nil, false
	}
	entry := q.entries[q.next]
	q.next++
	return entry, true
}

// Remaining counts entries not yet handed out.
func (q *ContactQueue) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries) - q.next
}

func (q *ContactQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// MarkProcessed flags an entry whose result has been recorded.
func (q *ContactQueue) MarkProcessed(id int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.entries {
		if e.ID == id {
			e.Processed = true
			return
		}
	}
}
