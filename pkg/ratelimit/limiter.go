package ratelimit

import (
	"math/rand"
	"sync"
	"time"
)

// Controller defines the interface for adaptive request pacing
type Controller interface {
	// Wait blocks until it is safe to issue the next request
	Wait()
	// OnSuccess widens the permitted rate after a successful request
	OnSuccess()
	// OnRateLimited narrows the permitted rate after a 429 response
	OnRateLimited()
	// Rate returns the current permitted rate in requests per second
	Rate() float64
}

// Adaptive is a rate controller that tunes the interval between
// requests based on observed success and rate-limit responses.
// The rate stays in (0, maxRate]; there is no lower bound.
type Adaptive struct {
	mu        sync.Mutex
	rate      float64 // requests per second
	maxRate   float64
	factor    float64
	maxJitter time.Duration
	lastCall  time.Time

	// Injection points for deterministic tests
	now   func() time.Time
	sleep func(time.Duration)
}

// NewAdaptive creates a new adaptive rate controller.
// initialRate and maxRate are in requests per second; factor is the
// multiplicative adjustment applied on success (and its inverse on
// rate limiting); maxJitter bounds the random delay added to each wait.
func NewAdaptive(initialRate, maxRate, factor float64, maxJitter time.Duration) *Adaptive {
	if initialRate <= 0 {
		initialRate = 1.0
	}
	if maxRate <= 0 {
		maxRate = initialRate
	}
	if initialRate > maxRate {
		initialRate = maxRate
	}
	if factor <= 1.0 {
		factor = 1.1
	}

	return &Adaptive{
		rate:      initialRate,
		maxRate:   maxRate,
		factor:    factor,
		maxJitter: maxJitter,
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

// Wait blocks until the current target interval since the previous
// request has elapsed, plus a bounded random jitter.
func (a *Adaptive) Wait() {
	a.mu.Lock()
	interval := time.Duration(float64(time.Second) / a.rate)
	jitter := time.Duration(rand.Float64() * float64(a.maxJitter))
	elapsed := a.now().Sub(a.lastCall)
	wait := interval + jitter - elapsed
	a.mu.Unlock()

	if wait > 0 {
		a.sleep(wait)
	}

	a.mu.Lock()
	a.lastCall = a.now()
	a.mu.Unlock()
}

// OnSuccess increases the permitted rate, capped at the maximum
func (a *Adaptive) OnSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.rate *= a.factor
	if a.rate > a.maxRate {
		a.rate = a.maxRate
	}
}

// OnRateLimited decreases the permitted rate with no lower bound
func (a *Adaptive) OnRateLimited() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.rate /= a.factor
}

// Rate returns the current permitted rate in requests per second
func (a *Adaptive) Rate() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rate
}
