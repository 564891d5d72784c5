package service_test

import (
	"testing"

	"github.com/wasender/wablast-backend/internal/model"
	"github.com/wasender/wablast-backend/internal/service"
)

func entries(phones ...string) []*model.ContactEntry {
	out := make([]*model.ContactEntry, len(phones))
	for i, p := range phones {
		out[i] = &model.ContactEntry{ID: i + 1, Phone: p}
	}
	return out
}

func TestContactQueueFIFO(t *testing.T) {
	q := service.NewContactQueue(entries("+1", "+2", "+3"))

	if q.Remaining() != 3 {
		t.Fatalf("Remaining = %d, want 3", q.Remaining())
	}
	for i, want := range []string{"+1", "+2", "+3"} {
		e, ok := q.Next()
		if !ok {
			t.Fatalf("Next() exhausted at %d", i)
		}
		if e.Phone != want {
			t.Fatalf("Next() = %s, want %s (submission order must be preserved)", e.Phone, want)
		}
	}
	if _, ok := q.Next(); ok {
		t.Fatal("expected queue exhausted")
	}
	if q.Remaining() != 0 {
		t.Fatalf("Remaining = %d, want 0", q.Remaining())
	}
}

func TestContactQueueNeverRepeats(t *testing.T) {
	q := service.NewContactQueue(entries("+1", "+2"))

	seen := map[string]int{}
	for {
		e, ok := q.Next()
		if !ok {
			break
		}
		seen[e.Phone]++
	}
	for phone, n := range seen {
		if n != 1 {
			t.Fatalf("entry %s returned %d times", phone, n)
		}
	}
}

func TestContactQueueMarkProcessed(t *testing.T) {
	es := entries("+1", "+2")
	q := service.NewContactQueue(es)

	e, _ := q.Next()
	q.MarkProcessed(e.ID)
	if !es[0].Processed {
		t.Fatal("expected first entry marked processed")
	}
	if es[1].Processed {
		t.Fatal("second entry should not be marked")
	}
}
