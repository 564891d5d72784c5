package queue_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wasender/wablast-backend/internal/queue"
)

func TestInMemoryQueueDelivers(t *testing.T) {
	q := queue.NewInMemoryQueue(zerolog.Nop())

	got := make(chan []byte, 1)
	if err := q.Subscribe("t", func(body []byte) error {
		got <- body
		return nil
	}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := q.Publish("t", []byte(`{"x":1}`)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case body := <-got:
		if string(body) != `{"x":1}` {
			t.Fatalf("got %s", body)
		}
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestInMemoryQueuePublishWithoutSubscribers(t *testing.T) {
	q := queue.NewInMemoryQueue(zerolog.Nop())
	if err := q.Publish("empty", []byte("x")); err == nil {
		t.Fatal("expected error when no subscribers")
	}
}
