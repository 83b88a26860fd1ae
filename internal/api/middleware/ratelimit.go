package middleware

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// visitorLimiter hands out one token bucket per caller IP. The map is
// wiped once it grows past maxVisitors; a wiped caller just re-earns a
// fresh bucket on its next request.
type visitorLimiter struct {
	mu       sync.Mutex
	visitors map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

const maxVisitors = 10000

func newVisitorLimiter(rps float64, burst int) *visitorLimiter {
	return &visitorLimiter{
		visitors: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (vl *visitorLimiter) allow(ip string) bool {
	vl.mu.Lock()
	defer vl.mu.Unlock()

	lim, ok := vl.visitors[ip]
	if !ok {
		lim = rate.NewLimiter(vl.rps, vl.burst)
		vl.visitors[ip] = lim
	}
	return lim.Allow()
}

func (vl *visitorLimiter) sweep() {
	vl.mu.Lock()
	defer vl.mu.Unlock()
	if len(vl.visitors) > maxVisitors {
		vl.visitors = make(map[string]*rate.Limiter)
	}
}

// RateLimit caps requests per IP. The IP comes from X-Real-IP when the
// RealIP middleware has run, falling back to the raw remote address.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	vl := newVisitorLimiter(rps, burst)

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			vl.sweep()
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.Header.Get("X-Real-IP")
			if ip == "" {
				ip = r.RemoteAddr
			}

			if !vl.allow(ip) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
