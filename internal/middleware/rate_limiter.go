package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter controls how frequently a caller may perform an action.
type RateLimiter interface {
	Allow(key string) bool
}

type caller struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter spreads the upstream lookup quota across callers by key,
// typically a scope-prefixed IP address. Idle entries expire so the map
// stays bounded under address churn.
type ipRateLimiter struct {
	mu      sync.Mutex
	callers map[string]*caller
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time
}

// NewIPRateLimiter constructs a per-key limiter allowing up to `requests`
// events per `window`, plus burst capacity. Entries are dropped after ttl
// of inactivity.
func NewIPRateLimiter(requests int, window time.Duration, burst int, ttl time.Duration) RateLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Second
	}
	if burst <= 0 {
		burst = 1
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &ipRateLimiter{
		callers: make(map[string]*caller),
		limit:   rate.Every(window / time.Duration(requests)),
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (l *ipRateLimiter) Allow(key string) bool {
	if key == "" {
		key = "unknown"
	}

	now := l.now()

	l.mu.Lock()
	c := l.callerLocked(key, now)
	l.pruneLocked(now)
	l.mu.Unlock()

	return c.limiter.Allow()
}

func (l *ipRateLimiter) callerLocked(key string, now time.Time) *caller {
	if c, ok := l.callers[key]; ok {
		c.lastSeen = now
		return c
	}

	c := &caller{limiter: rate.NewLimiter(l.limit, l.burst), lastSeen: now}
	l.callers[key] = c
	return c
}

func (l *ipRateLimiter) pruneLocked(now time.Time) {
	for key, c := range l.callers {
		if now.Sub(c.lastSeen) > l.ttl {
			delete(l.callers, key)
		}
	}
}
