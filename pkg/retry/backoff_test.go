package retry

import (
	"context"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  2 * time.Second,
		MaxDelay:   60 * time.Second,
		Multiplier: 2.0,
	}

	tests := []struct {
		attempt     int
		expected    time.Duration
		description string
	}{
		{0, 0, "Zeroth attempt has no delay"},
		{1, 2 * time.Second, "First attempt"},
		{2, 4 * time.Second, "Second attempt"},
		{3, 8 * time.Second, "Third attempt"},
		{5, 32 * time.Second, "Fifth attempt"},
		{6, 60 * time.Second, "Sixth attempt (capped at max)"},
		{10, 60 * time.Second, "Tenth attempt (still capped)"},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			delay := backoff.NextDelay(test.attempt)
			if delay != test.expected {
				t.Errorf("Expected delay %v, got %v", test.expected, delay)
			}
		})
	}
}

func TestConstantBackoff(t *testing.T) {
	backoff := &ConstantBackoff{Delay: 10 * time.Millisecond}

	if delay := backoff.NextDelay(1); delay != 10*time.Millisecond {
		t.Errorf("Expected constant delay, got %v", delay)
	}
	if delay := backoff.NextDelay(5); delay != 10*time.Millisecond {
		t.Errorf("Expected constant delay, got %v", delay)
	}
	if delay := backoff.NextDelay(0); delay != 0 {
		t.Errorf("Expected no delay for attempt 0, got %v", delay)
	}
}

func TestWaitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Wait(ctx, time.Minute)
	if err == nil {
		t.Error("Expected error when context is cancelled")
	}
}

func TestWaitZeroDelay(t *testing.T) {
	if err := Wait(context.Background(), 0); err != nil {
		t.Errorf("Expected no error for zero delay, got %v", err)
	}
}
