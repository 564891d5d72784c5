package service_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/wasender/wablast-backend/internal/model"
	"github.com/wasender/wablast-backend/internal/service"
)

func newPlanner(seed int64) *service.TimingPlanner {
	return service.NewTimingPlanner(rand.New(rand.NewSource(seed)))
}

func TestNextDelayWithinBounds(t *testing.T) {
	p := newPlanner(1)
	cfg := model.TimingConfig{MinDelaySeconds: 2, MaxDelaySeconds: 5}

	for i := 0; i < 500; i++ {
		d := p.NextDelay(cfg)
		if d < 2*time.Second || d > 5*time.Second {
			t.Fatalf("delay %v out of [2s, 5s]", d)
		}
		if d%time.Second != 0 {
			t.Fatalf("expected whole seconds without decimal randomization, got %v", d)
		}
	}
}

func TestNextDelayEqualBoundsIsConstant(t *testing.T) {
	p := newPlanner(1)
	cfg := model.TimingConfig{MinDelaySeconds: 7, MaxDelaySeconds: 7}

	for i := 0; i < 10; i++ {
		if d := p.NextDelay(cfg); d != 7*time.Second {
			t.Fatalf("expected 7s, got %v", d)
		}
	}
}

func TestNextDelayVaries(t *testing.T) {
	p := newPlanner(42)
	cfg := model.TimingConfig{MinDelaySeconds: 1, MaxDelaySeconds: 60}

	seen := map[time.Duration]bool{}
	for i := 0; i < 20; i++ {
		seen[p.NextDelay(cfg)] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected varied delays over a wide range, got %d distinct value(s)", len(seen))
	}
}

func TestNextDelayDecimals(t *testing.T) {
	p := newPlanner(3)
	cfg := model.TimingConfig{MinDelaySeconds: 1, MaxDelaySeconds: 3, RandomizeDecimals: true}

	sawFraction := false
	for i := 0; i < 200; i++ {
		d := p.NextDelay(cfg)
		if d < time.Second || d > 3*time.Second {
			t.Fatalf("delay %v out of [1s, 3s]", d)
		}
		if d%time.Second != 0 {
			sawFraction = true
		}
	}
	if !sawFraction {
		t.Fatal("expected at least one sub-second delay with decimal randomization")
	}
}

func TestShouldBreak(t *testing.T) {
	p := newPlanner(1)
	tests := []struct {
		since, threshold int
		want             bool
	}{
		{0, 5, false},
		{4, 5, false},
		{5, 5, true},
		{6, 5, true},
		{3, 0, false}, // no threshold drawn yet
	}
	for _, tt := range tests {
		if got := p.ShouldBreak(tt.since, tt.threshold); got != tt.want {
			t.Errorf("ShouldBreak(%d, %d) = %v, want %v", tt.since, tt.threshold, got, tt.want)
		}
	}
}

func TestNextBreakThresholdBoundsAndVariance(t *testing.T) {
	p := newPlanner(99)
	cfg := model.BreakConfig{Enabled: true, MinAfterMessages: 2, MaxAfterMessages: 9}

	seen := map[int]bool{}
	for i := 0; i < 100; i++ {
		n := p.NextBreakThreshold(cfg)
		if n < 2 || n > 9 {
			t.Fatalf("threshold %d out of [2, 9]", n)
		}
		seen[n] = true
	}
	if len(seen) < 2 {
		t.Fatal("expected consecutive thresholds to be independently sampled")
	}
}

func TestNextBreakDurationBounds(t *testing.T) {
	p := newPlanner(7)
	cfg := model.BreakConfig{Enabled: true, MinMinutes: 1, MaxMinutes: 2}

	for i := 0; i < 100; i++ {
		d := p.NextBreakDuration(cfg)
		if d < time.Minute || d > 2*time.Minute {
			t.Fatalf("break duration %v out of [1m, 2m]", d)
		}
	}
}
