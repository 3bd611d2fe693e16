// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts requests per key in fixed windows that start at a key's
// first request. It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
	now      func() time.Time
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a limiter allowing limit requests per key per duration.
func New(limit int, duration time.Duration) *Limiter {
	l := &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
	}
	go l.cleanupLoop(duration * 2)
	return l
}

// Allow records a request for key and reports whether it is within limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining returns how many requests key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || l.now().After(w.expiresAt) {
		return l.limit
	}
	if r := l.limit - w.count; r > 0 {
		return r
	}
	return 0
}

// Reset clears key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

func (l *Limiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		l.mu.Lock()
		now := l.now()
		for k, w := range l.windows {
			if now.After(w.expiresAt) {
				delete(l.windows, k)
			}
		}
		l.mu.Unlock()
	}
}

// Middleware rejects requests over the limit with 429 and a JSON error.
// key selects the bucket; an empty key is never limited.
func Middleware(l *Limiter, key func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if k := key(r); k != "" && !l.Allow(k) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Too many requests. Please try again later."})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the client IP, preferring X-Forwarded-For and X-Real-IP
// for proxied requests.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
