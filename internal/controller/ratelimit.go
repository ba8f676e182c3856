package controller

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	searchRateLimit  = 100
	searchRateWindow = 15 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// keyLimiter tracks request rates per caller key with expiration of idle
// entries.
type keyLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	ttl      time.Duration
}

func newKeyLimiter(requests int, window time.Duration) *keyLimiter {
	return &keyLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
		ttl:      2 * window,
	}
}

func (l *keyLimiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	for k, other := range l.visitors {
		if now.Sub(other.lastSeen) > l.ttl {
			delete(l.visitors, k)
		}
	}
	l.mu.Unlock()

	return v.limiter.Allow()
}
