package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/wasender/wablast-backend/internal/repository"
)

// DuplicateGuard decides whether a recipient may be messaged: one successful
// admission per (owner, phone) pair, forever. The resend-failed path sets
// override, which updates the existing record instead of duplicating it.
type DuplicateGuard struct {
	Store repository.DuplicateStore
	Log   zerolog.Logger
}

func NewDuplicateGuard(store repository.DuplicateStore, log zerolog.Logger) *DuplicateGuard {
	return &DuplicateGuard{Store: store, Log: log}
}

// Admit checks and records the pair atomically. With override set the
// existing record does not block; the send is allowed and RecordSend will
// update it afterwards.
func (g *DuplicateGuard) Admit(ctx context.Context, ownerID, phone string, override bool) (bool, error) {
	if override {
		// Ensure a record exists so later RecordSend calls update, not race.
		admitted, err := g.Store.Admit(ctx, ownerID, phone, time.Now())
		if err != nil {
			return false, err
		}
		if !admitted {
			g.Log.Debug().Str("phone", phone).Msg("override admission over existing record")
		}
		return true, nil
	}
	return g.Store.Admit(ctx, ownerID, phone, time.Now())
}

// MarkSent updates the pair's record after an actual delivery attempt.
func (g *DuplicateGuard) MarkSent(ctx context.Context, ownerID, phone, status string) error {
	return g.Store.RecordSend(ctx, ownerID, phone, status, time.Now())
}
