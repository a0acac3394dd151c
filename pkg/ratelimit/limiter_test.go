package ratelimit

import (
	"testing"
	"time"
)

func TestAdaptiveRateAdjustment(t *testing.T) {
	a := NewAdaptive(1.0, 2.0, 1.1, 0)

	// Success narrows the interval (raises the rate)
	a.OnSuccess()
	if a.Rate() <= 1.0 {
		t.Errorf("Expected rate above 1.0 after success, got %f", a.Rate())
	}

	// Rate never exceeds the maximum
	for i := 0; i < 50; i++ {
		a.OnSuccess()
	}
	if a.Rate() > 2.0 {
		t.Errorf("Expected rate capped at 2.0, got %f", a.Rate())
	}

	// Rate limiting widens the interval with no lower bound
	before := a.Rate()
	a.OnRateLimited()
	if a.Rate() >= before {
		t.Errorf("Expected rate below %f after rate limit, got %f", before, a.Rate())
	}
	for i := 0; i < 100; i++ {
		a.OnRateLimited()
	}
	if a.Rate() <= 0 {
		t.Errorf("Expected rate to stay positive, got %f", a.Rate())
	}
}

func TestAdaptiveWaitBlocksForInterval(t *testing.T) {
	a := NewAdaptive(2.0, 2.0, 1.1, 0) // 500ms interval, no jitter

	var slept time.Duration
	now := time.Unix(1000, 0)
	a.now = func() time.Time { return now }
	a.sleep = func(d time.Duration) {
		slept += d
		now = now.Add(d)
	}

	// First wait: no previous call recorded, full interval applies
	a.Wait()

	// Second wait immediately after should block for the interval
	slept = 0
	a.Wait()
	if slept != 500*time.Millisecond {
		t.Errorf("Expected 500ms wait, got %v", slept)
	}

	// No wait needed once the interval has already elapsed
	slept = 0
	now = now.Add(time.Second)
	a.Wait()
	if slept != 0 {
		t.Errorf("Expected no wait after interval elapsed, got %v", slept)
	}
}

func TestAdaptiveWaitJitterBounded(t *testing.T) {
	maxJitter := 100 * time.Millisecond
	a := NewAdaptive(1.0, 2.0, 1.1, maxJitter)

	var slept time.Duration
	now := time.Unix(1000, 0)
	a.now = func() time.Time { return now }
	a.sleep = func(d time.Duration) {
		slept = d
		now = now.Add(d)
	}

	a.Wait()
	for i := 0; i < 20; i++ {
		slept = 0
		a.Wait()
		if slept < time.Second || slept > time.Second+maxJitter {
			t.Errorf("Expected wait in [1s, 1s+%v], got %v", maxJitter, slept)
		}
	}
}

func TestNewAdaptiveClampsArguments(t *testing.T) {
	a := NewAdaptive(5.0, 2.0, 1.1, 0)
	if a.Rate() != 2.0 {
		t.Errorf("Expected initial rate clamped to max, got %f", a.Rate())
	}

	a = NewAdaptive(-1, 2.0, 1.1, 0)
	if a.Rate() <= 0 {
		t.Errorf("Expected positive default rate, got %f", a.Rate())
	}
}
