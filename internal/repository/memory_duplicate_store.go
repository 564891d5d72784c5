package repository

import (
	"context"
	"sync"
	"time"

	"github.com/wasender/wablast-backend/internal/model"
)

// MemoryDuplicateStore keeps duplicate records in a map. Used by tests and by
// deployments that disable persistence. Not durable across restarts.
type MemoryDuplicateStore struct {
	mu      sync.Mutex
	records map[string]*model.DuplicateRecord
}

func NewMemoryDuplicateStore() *MemoryDuplicateStore {
	return &MemoryDuplicateStore{records: make(map[string]*model.DuplicateRecord)}
}

func key(ownerID, phone string) string { return ownerID + "\x00" + phone }

func (r *MemoryDuplicateStore) Admit(ctx context.Context, ownerID, phone string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(ownerID, phone)
	if _, exists := r.records[k]; exists {
		return false, nil
	}
	r.records[k] = &model.DuplicateRecord{
		OwnerID:     ownerID,
		Phone:       phone,
		FirstSentAt: at,
		LastSentAt:  at,
		LastStatus:  "admitted",
	}
	return true, nil
}

func (r *MemoryDuplicateStore) RecordSend(ctx context.Context, ownerID, phone, status string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(ownerID, phone)
	rec, exists := r.records[k]
	if !exists {
		rec = &model.DuplicateRecord{OwnerID: ownerID, Phone: phone, FirstSentAt: at}
		r.records[k] = rec
	}
	rec.LastSentAt = at
	rec.SendCount++
	rec.LastStatus = status
	return nil
}

func (r *MemoryDuplicateStore) Get(ctx context.Context, ownerID, phone string) (*model.DuplicateRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, exists := r.records[key(ownerID, phone)]
	if !exists {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *MemoryDuplicateStore) ListByOwner(ctx context.Context, ownerID string) ([]model.DuplicateRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	records := []model.DuplicateRecord{}
	for _, rec := range r.records {
		if rec.OwnerID == ownerID {
			records = append(records, *rec)
		}
	}
	return records, nil
}

func (r *MemoryDuplicateStore) Delete(ctx context.Context, ownerID, phone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, key(ownerID, phone))
	return nil
}
