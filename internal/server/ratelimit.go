package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client address
type RateLimiter struct {
	rate  rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	maxAge time.Duration
	stop   chan struct{}
	once   sync.Once
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second with the
// given burst for each client. Idle clients are forgotten after ten minutes.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	l := &RateLimiter{
		rate:     rate.Limit(rps),
		burst:    burst,
		limiters: make(map[string]*clientLimiter),
		maxAge:   10 * time.Minute,
		stop:     make(chan struct{}),
	}
	go l.cleanup(5 * time.Minute)
	return l
}

// Allow reports whether a request from key may proceed
func (l *RateLimiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	c, ok := l.limiters[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[key] = c
	}
	c.lastAccess = now
	l.mu.Unlock()

	return c.limiter.AllowN(now, 1)
}

// Middleware rejects requests over the limit with 429
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientKey(r)) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Stop ends the cleanup goroutine
func (l *RateLimiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *RateLimiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.removeIdle(time.Now().Add(-l.maxAge))
		case <-l.stop:
			return
		}
	}
}

func (l *RateLimiter) removeIdle(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, c := range l.limiters {
		if c.lastAccess.Before(cutoff) {
			delete(l.limiters, key)
		}
	}
}

// RemoteAddr 已经被 middleware.RealIP 改写过
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
