package worker

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter rate-limits by key, one token bucket per key (a client IP for
// the HTTP surface).
type Limiter struct {
	limiters     map[string]*entry
	overrides    map[string]rate.Limit
	mu           sync.Mutex
	defaultRate  rate.Limit
	defaultBurst int
	now          func() time.Time
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter creates a limiter; requestsPerSecond <= 0 disables limiting
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}
	return &Limiter{
		limiters:     make(map[string]*entry),
		overrides:    make(map[string]rate.Limit),
		defaultRate:  limitFor(requestsPerSecond),
		defaultBurst: burst,
		now:          time.Now,
	}
}

func limitFor(requestsPerSecond float64) rate.Limit {
	if requestsPerSecond <= 0 {
		return rate.Inf
	}
	return rate.Limit(requestsPerSecond)
}

// Allow reports whether key may proceed now
func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.limiters[key]
	if !ok {
		limit, ok := l.overrides[key]
		if !ok {
			limit = l.defaultRate
		}
		e = &entry{limiter: rate.NewLimiter(limit, l.defaultBurst)}
		l.limiters[key] = e
	}
	e.lastSeen = l.now()
	return e.limiter
}

// SetKeyRate overrides the limit for one key; requestsPerSecond <= 0
// lifts it. The override outlives Sweep.
func (l *Limiter) SetKeyRate(key string, requestsPerSecond float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	limit := limitFor(requestsPerSecond)
	l.overrides[key] = limit
	if e, ok := l.limiters[key]; ok {
		e.limiter.SetLimit(limit)
	}
}

// Len returns the number of tracked keys
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Sweep forgets keys idle for longer than idle and returns how many
func (l *Limiter) Sweep(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-idle)
	removed := 0
	for key, e := range l.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(l.limiters, key)
			removed++
		}
	}
	return removed
}

// SweepEvery runs Sweep on an interval until ctx is done
func (l *Limiter) SweepEvery(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep(idle)
		}
	}
}
