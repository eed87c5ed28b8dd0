package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Limiter struct {
	limiter *rate.Limiter
}

// New uses 0 or negative limit for no rate limiting. A burst below 1 is treated as 1.
func New(requestsPerSecond float64, burst int) *Limiter {
	return &Limiter{limiter: newLimiter(requestsPerSecond, burst)}
}

func newLimiter(requestsPerSecond float64, burst int) *rate.Limiter {
	if burst < 1 {
		burst = 1
	}
	if requestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, burst)
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow is non-blocking.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

func (l *Limiter) Limit() float64 {
	limit := l.limiter.Limit()
	if limit == rate.Inf {
		return 0
	}
	return float64(limit)
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Keyed keeps one token bucket per key, such as a client IP or an upstream host.
type Keyed struct {
	mu                sync.Mutex
	entries           map[string]*entry
	requestsPerSecond float64
	burst             int
	now               func() time.Time
}

func NewKeyed(requestsPerSecond float64, burst int) *Keyed {
	return &Keyed{
		entries:           make(map[string]*entry),
		requestsPerSecond: requestsPerSecond,
		burst:             burst,
		now:               time.Now,
	}
}

// Unlimited reports whether every call is admitted immediately.
func (k *Keyed) Unlimited() bool {
	return k.requestsPerSecond <= 0
}

func (k *Keyed) get(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.entries[key]
	if !ok {
		e = &entry{limiter: newLimiter(k.requestsPerSecond, k.burst)}
		k.entries[key] = e
	}
	e.lastSeen = k.now()
	return e.limiter
}

func (k *Keyed) Wait(ctx context.Context, key string) error {
	if k.Unlimited() {
		return ctx.Err()
	}
	return k.get(key).Wait(ctx)
}

func (k *Keyed) Allow(key string) bool {
	if k.Unlimited() {
		return true
	}
	return k.get(key).Allow()
}

// Sweep drops keys not used within idle and returns how many were removed.
func (k *Keyed) Sweep(idle time.Duration) int {
	k.mu.Lock()
	defer k.mu.Unlock()

	cutoff := k.now().Add(-idle)
	removed := 0
	for key, e := range k.entries {
		if e.lastSeen.Before(cutoff) {
			delete(k.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
