// Package ratelimit enforces a per-IP request ceiling using a token
// bucket per visitor, evicting idle visitors so the map doesn't grow
// without bound.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/anchorvcs/anchor/internal/apperr"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter rate-limits requests per client IP.
type Limiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
	idleTTL  time.Duration
	stop     chan struct{}
}

// New creates a Limiter allowing rps requests per second per IP, with
// burst headroom. Idle visitors are evicted after 3 minutes.
func New(rps float64, burst int) *Limiter {
	l := &Limiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		idleTTL:  3 * time.Minute,
		stop:     make(chan struct{}),
	}
	go l.evictLoop()
	return l
}

// Allow reports whether the request from r's client IP is within its
// rate budget, consuming one token if so.
func (l *Limiter) Allow(r *http.Request) bool {
	return l.visitorFor(clientIP(r)).Allow()
}

// Check is Allow wrapped as an apperr-returning guard, for use directly
// in an HTTP handler or middleware.
func (l *Limiter) Check(r *http.Request) error {
	if !l.Allow(r) {
		return apperr.RateLimited("too many requests")
	}
	return nil
}

func (l *Limiter) visitorFor(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (l *Limiter) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			for ip, v := range l.visitors {
				if time.Since(v.lastSeen) > l.idleTTL {
					delete(l.visitors, ip)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Close stops the background eviction loop.
func (l *Limiter) Close() { close(l.stop) }

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
