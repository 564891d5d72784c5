package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/wasender/wablast-backend/internal/repository"
)

func TestMemoryStoreConcurrentAdmitIsLinearized(t *testing.T) {
	store := repository.NewMemoryDuplicateStore()
	ctx := context.Background()

	const workers = 64
	var wg sync.WaitGroup
	admitted := make(chan bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Admit(ctx, "owner", "+254700000001", time.Now())
			if err != nil {
				t.Errorf("Admit: %v", err)
				return
			}
			admitted <- ok
		}()
	}
	wg.Wait()
	close(admitted)

	wins := 0
	for ok := range admitted {
		if ok {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("%d concurrent admits won, want exactly 1", wins)
	}
}

func TestMemoryStoreRecordSendUpdatesInPlace(t *testing.T) {
	store := repository.NewMemoryDuplicateStore()
	ctx := context.Background()

	first := time.Now().Add(-time.Hour)
	if _, err := store.Admit(ctx, "owner", "+1", first); err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if err := store.RecordSend(ctx, "owner", "+1", "sent", time.Now()); err != nil {
		t.Fatalf("RecordSend: %v", err)
	}
	if err := store.RecordSend(ctx, "owner", "+1", "sent", time.Now()); err != nil {
		t.Fatalf("RecordSend: %v", err)
	}

	rec, err := store.Get(ctx, "owner", "+1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.SendCount != 2 {
		t.Fatalf("send_count = %d, want 2", rec.SendCount)
	}
	if !rec.FirstSentAt.Equal(first) {
		t.Fatal("first_sent_at must not move on update")
	}
	if rec.LastStatus != "sent" {
		t.Fatalf("last_status = %q, want sent", rec.LastStatus)
	}

	records, err := store.ListByOwner(ctx, "owner")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1 (update, not duplicate)", len(records))
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := repository.NewMemoryDuplicateStore()
	ctx := context.Background()

	if _, err := store.Admit(ctx, "owner", "+1", time.Now()); err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if err := store.Delete(ctx, "owner", "+1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	ok, err := store.Admit(ctx, "owner", "+1", time.Now())
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if !ok {
		t.Fatal("deleted pair should be admissible again")
	}
}
