package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wasender/wablast-backend/internal/model"
)

// DuplicateStore is the persistence contract behind the duplicate guard.
// Admit must be atomic across concurrent callers: for one (owner, phone)
// pair, exactly one concurrent Admit call wins.
type DuplicateStore interface {
	// Admit records the pair if it is unseen and reports whether the caller
	// may message it. A false return means a record already exists.
	Admit(ctx context.Context, ownerID, phone string, at time.Time) (bool, error)

	// RecordSend updates the pair's record after a delivery attempt
	// (last_sent_at, send_count, last_status), inserting it if missing.
	RecordSend(ctx context.Context, ownerID, phone, status string, at time.Time) error

	Get(ctx context.Context, ownerID, phone string) (*model.DuplicateRecord, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.DuplicateRecord, error)
	Delete(ctx context.Context, ownerID, phone string) error
}

// NewDuplicateStore picks the store implementation for the given driver.
// The memory store backs tests and deployments that opt out of persistence.
func NewDuplicateStore(driver string, conn *sql.DB) (DuplicateStore, error) {
	switch driver {
	case "postgres":
		return &PostgresDuplicateStore{DB: conn}, nil
	case "sqlite", "sqlite3":
		s := &SQLiteDuplicateStore{DB: conn}
		if err := s.EnsureSchema(context.Background()); err != nil {
			return nil, fmt.Errorf("sqlite schema: %w", err)
		}
		return s, nil
	case "", "none", "memory":
		return NewMemoryDuplicateStore(), nil
	}
	return nil, fmt.Errorf("unknown duplicate store driver: %q", driver)
}
