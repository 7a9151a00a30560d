// Package ratelimit provides per-key token bucket rate limiting. The
// scan endpoint uses it to keep any single client from burning through
// the vision API quota.
package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"
)

// PerKey hands out an independent token bucket per key. Keys are
// typically client IPs.
type PerKey struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// New creates a per-key limiter allowing rps requests per second with
// the given burst.
func New(rps float64, burst int) *PerKey {
	return &PerKey{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether a request for the key may proceed right now.
func (p *PerKey) Allow(key string) bool {
	return p.limiter(key).Allow()
}

func (p *PerKey) limiter(key string) *rate.Limiter {
	p.mu.RLock()
	l, ok := p.limiters[key]
	p.mu.RUnlock()
	if ok {
		return l
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok = p.limiters[key]; ok {
		return l
	}
	l = rate.NewLimiter(p.limit, p.burst)
	p.limiters[key] = l
	return l
}
