package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterDisabledByDefault(t *testing.T) {
	l := New(0)
	now := time.Now()
	for i := 0; i < 5; i++ {
		if d := l.Observe(now, 10<<20); d != 0 {
			t.Fatalf("expected zero sleep with no target, got %v", d)
		}
		now = now.Add(100 * time.Millisecond)
	}
}

func TestLimiterAllowsBurstBeforeThrottling(t *testing.T) {
	l := New(1 << 20) // 1 MiB/s target
	now := time.Now()

	// A single large sample measured over a tiny elapsed window reads as an
	// enormous instantaneous rate; the limiter only reacts once it has
	// enough history to compute a meaningful window average.
	d := l.Observe(now, 1<<20)
	if d != 0 {
		t.Fatalf("expected no sleep on first sample (zero elapsed), got %v", d)
	}
}

func TestLimiterThrottlesSustainedExcess(t *testing.T) {
	l := New(1 << 20) // 1 MiB/s target
	now := time.Now()

	var lastSleep time.Duration
	for i := 0; i < 20; i++ {
		lastSleep = l.Observe(now, 4<<20) // writing 4x target every second
		now = now.Add(time.Second)
	}

	if lastSleep <= 0 {
		t.Fatalf("expected a positive sleep once sustained throughput exceeds target plus burst, got %v", lastSleep)
	}
}

func TestLimiterResetDropsHistory(t *testing.T) {
	l := New(1 << 20)
	now := time.Now()
	for i := 0; i < 10; i++ {
		l.Observe(now, 4<<20)
		now = now.Add(time.Second)
	}

	l.Reset()
	if len(l.samples) != 0 {
		t.Fatalf("expected Reset to clear history, got %d samples", len(l.samples))
	}
}

func TestPruneOlderThanKeepsOnlyRecent(t *testing.T) {
	base := time.Now()
	samples := []sample{
		{at: base, bytes: 1},
		{at: base.Add(1 * time.Second), bytes: 2},
		{at: base.Add(20 * time.Second), bytes: 3},
	}
	pruned := pruneOlderThan(samples, base.Add(15*time.Second))
	if len(pruned) != 1 || pruned[0].bytes != 3 {
		t.Fatalf("expected only the newest sample to survive, got %+v", pruned)
	}
}
