package middleware

import (
	"net/http"
	"sync"
	"time"
)

// ipLimiter throttles the chat and contact endpoints per client IP with
// a token bucket: burst tokens up front, refilled continuously at
// perSecond.
type ipLimiter struct {
	mu        sync.Mutex
	perClient map[string]*tokenBucket
	perSecond float64
	burst     float64
}

type tokenBucket struct {
	remaining float64
	refilled  time.Time
}

func newIPLimiter(perSecond float64, burst int) *ipLimiter {
	return &ipLimiter{
		perClient: make(map[string]*tokenBucket),
		perSecond: perSecond,
		burst:     float64(burst),
	}
}

func (l *ipLimiter) allow(client string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.perClient[client]
	if !ok {
		b = &tokenBucket{remaining: l.burst, refilled: now}
		l.perClient[client] = b
	}

	b.remaining += now.Sub(b.refilled).Seconds() * l.perSecond
	if b.remaining > l.burst {
		b.remaining = l.burst
	}
	b.refilled = now

	if b.remaining < 1 {
		return false
	}
	b.remaining--
	return true
}

// sweep drops buckets idle past the full-refill point; a bucket idle
// that long holds full burst already, the same as a fresh one.
func (l *ipLimiter) sweep(idle time.Duration) {
	ticker := time.NewTicker(idle)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-idle)
		l.mu.Lock()
		for client, b := range l.perClient {
			if b.refilled.Before(cutoff) {
				delete(l.perClient, client)
			}
		}
		l.mu.Unlock()
	}
}

// RateLimit rejects clients exceeding perSecond requests, with the
// given burst, responding 429 Too Many Requests.
func RateLimit(perSecond float64, burst int) func(http.Handler) http.Handler {
	limiter := newIPLimiter(perSecond, burst)

	idle := 2 * time.Minute
	if refill := time.Duration(float64(burst) / perSecond * float64(time.Second)); refill > idle {
		idle = refill
	}
	go limiter.sweep(idle)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.allow(clientAddr(r), time.Now()) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientAddr prefers the address resolved by chi's RealIP middleware.
func clientAddr(r *http.Request) string {
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
