package service

import (
	"math/rand"
	"sync"
	"time"

	"github.com/wasender/wablast-backend/internal/model"
)

// TimingPlanner draws the randomized delays, break cadence and break lengths
// for a blast. Every value is redrawn per use; fixed pacing is trivially
// detectable on the remote end. The rng is injected so tests can seed it.
type TimingPlanner struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewTimingPlanner(rng *rand.Rand) *TimingPlanner {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &TimingPlanner{rng: rng}
}

// intBetween returns a uniform integer in [min, max].
func (p *TimingPlanner) intBetween(min, max int) int {
	if max <= min {
		return min
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return min + p.rng.Intn(max-min+1)
}

func (p *TimingPlanner) floatBetween(min, max float64) float64 {
	if max <= min {
		return min
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return min + p.rng.Float64()*(max-min)
}

// NextDelay returns the pause to apply before the next send: a uniform whole
// number of seconds in [min, max], or a uniform real in the same interval
// when decimal randomization is on. Equal bounds return the constant.
func (p *TimingPlanner) NextDelay(cfg model.TimingConfig) time.Duration {
	min, max := cfg.MinDelaySeconds, cfg.MaxDelaySeconds
	if min < 0 {
		min = 0
	}
	if max < min {
		max = min
	}
	if cfg.RandomizeDecimals {
		secs := p.floatBetween(float64(min), float64(max))
		return time.Duration(secs * float64(time.Second))
	}
	return time.Duration(p.intBetween(min, max)) * time.Second
}

// ShouldBreak reports whether the message counter has reached the threshold.
// A non-positive threshold disables breaking.
func (p *TimingPlanner) ShouldBreak(messagesSinceBreak, threshold int) bool {
	return threshold > 0 && messagesSinceBreak >= threshold
}

// NextBreakThreshold draws how many messages to send before the next break.
// Redrawn after every break so consecutive intervals differ.
func (p *TimingPlanner) NextBreakThreshold(cfg model.BreakConfig) int {
	return p.intBetween(cfg.MinAfterMessages, cfg.MaxAfterMessages)
}

// NextBreakDuration draws the length of a break, sampled at second
// granularity within the configured minute bounds.
func (p *TimingPlanner) NextBreakDuration(cfg model.BreakConfig) time.Duration {
	secs := p.intBetween(cfg.MinMinutes*60, cfg.MaxMinutes*60)
	return time.Duration(secs) * time.Second
}
