package queue

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wasender/wablast-backend/internal/model"
)

// TopicBlastReports carries one ReportEvent per delivery attempt.
const TopicBlastReports = "blast_reports"

// ReportEvent is the wire form of a delivery report published after every
// send attempt. cmd/worker consumes these into blast_history.
type ReportEvent struct {
	OperationID string           `json:"operation_id"`
	OwnerID     string           `json:"owner_id"`
	Result      model.SendResult `json:"result"`
}

// Queue is a minimal topic-based pub/sub seam. Bodies are opaque bytes
// (JSON in practice) so the in-memory and RabbitMQ implementations match.
type Queue interface {
	Publish(topic string, body []byte) error
	Subscribe(topic string, handler func(body []byte) error) error
}

// InMemoryQueue delivers published messages to subscribers on background
// goroutines with bounded retry. Used for tests and single-binary runs.
type InMemoryQueue struct {
	mu         sync.Mutex
	handlers   map[string][]func(body []byte) error
	maxRetries int
	log        zerolog.Logger
}

func NewInMemoryQueue(log zerolog.Logger) *InMemoryQueue {
	return &InMemoryQueue{
		handlers:   make(map[string][]func(body []byte) error),
		maxRetries: 3,
		log:        log,
	}
}

// Publish sends a message to all subscribers of the topic.
func (q *InMemoryQueue) Publish(topic string, body []byte) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}
	for _, handler := range handlers {
		go q.deliver(topic, handler, body)
	}
	return nil
}

// deliver retries a failing handler with linear backoff, then drops.
func (q *InMemoryQueue) deliver(topic string, handler func(body []byte) error, body []byte) {
	for attempt := 0; ; attempt++ {
		err := handler(body)
		if err == nil {
			return
		}
		if attempt >= q.maxRetries {
			q.log.Warn().Str("topic", topic).Int("attempts", attempt+1).Err(err).
				Msg("message permanently failed")
			return
		}
		q.log.Debug().Str("topic", topic).Int("attempt", attempt+1).Err(err).
			Msg("message handler failed, retrying")
		time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
	}
}

// Subscribe adds a handler for a topic.
func (q *InMemoryQueue) Subscribe(topic string, handler func(body []byte) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}
