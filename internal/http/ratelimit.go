package http

import (
	"net/http"
	"sync"
	"time"

	"invoicer/internal/log"
)

// DefaultMutationsPerMinute limits bill writes per client IP.
const DefaultMutationsPerMinute = 60

// rateLimiter counts requests per client IP in fixed one-minute windows.
type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	now     func() time.Time
	clients map[string]*clientInfo
}

type clientInfo struct {
	windowStart time.Time
	requests    int
}

func newRateLimiter(limit int) *rateLimiter {
	return &rateLimiter{
		limit:   limit,
		now:     time.Now,
		clients: make(map[string]*clientInfo),
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	c, ok := rl.clients[ip]
	if !ok || now.Sub(c.windowStart) >= time.Minute {
		rl.clients[ip] = &clientInfo{windowStart: now, requests: 1}
		return true
	}
	c.requests++
	return c.requests <= rl.limit
}

// CleanExpired drops clients whose window closed more than ten minutes ago.
func (rl *rateLimiter) CleanExpired() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-10 * time.Minute)
	n := 0
	for ip, c := range rl.clients {
		if c.windowStart.Before(cutoff) {
			delete(rl.clients, ip)
			n++
		}
	}
	return n
}

// middleware limits POST, PUT and DELETE requests; reads are never limited.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			ip := clientIP(r)
			if !rl.allow(ip) {
				log.FromContext(r.Context()).WithComponent(log.ComponentHTTP).
					WarnContext(r.Context(), "Rate limit exceeded", log.FieldClientIP, ip, log.FieldMethod, r.Method)
				w.Header().Set("Retry-After", "60")
				writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded, try again later"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
