package service

import (
	"context"
	"math/rand"
	"sync"

	"github.com/wasender/wablast-backend/internal/model"
)

// ChannelResult reports one delivery attempt.
type ChannelResult struct {
	Success         bool
	AttachmentsSent int
	Error           string
}

// MessageChannel delivers one message to one recipient. The real
// implementation drives a WhatsApp Web session; this repo only consumes the
// seam, which keeps the engine testable without a browser.
type MessageChannel interface {
	Send(ctx context.Context, phone, text string, attachments []model.Attachment) ChannelResult
}

// MockChannel simulates deliveries with a configurable failure rate.
// Wired in development builds so the control API can be exercised end to end.
type MockChannel struct {
	FailureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewMockChannel(failureRate float64, rng *rand.Rand) *MockChannel {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &MockChannel{FailureRate: failureRate, rng: rng}
}

func (c *MockChannel) Send(ctx context.Context, phone, text string, attachments []model.Attachment) ChannelResult {
	c.mu.Lock()
	roll := c.rng.Float64()
	c.mu.Unlock()

	if roll < c.FailureRate {
		return ChannelResult{Success: false, Error: "mock send failed"}
	}
	return ChannelResult{Success: true, AttachmentsSent: len(attachments)}
}
