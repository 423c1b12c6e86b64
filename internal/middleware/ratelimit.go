package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/CaioAP/scuderia/internal/api/response"
	"github.com/CaioAP/scuderia/internal/auth"
)

// RateLimiter throttles mutating requests per user, or per IP when the
// request carries no identity.
type RateLimiter struct {
	visitors sync.Map
	rps      rate.Limit
	burst    int
	log      *zap.SugaredLogger
}

type visitor struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

// NewRateLimiter allows perMinute mutations per key with a small burst.
// perMinute <= 0 disables limiting.
func NewRateLimiter(perMinute int, log *zap.SugaredLogger) *RateLimiter {
	rps := rate.Inf
	if perMinute > 0 {
		rps = rate.Limit(float64(perMinute) / 60.0)
	}
	return &RateLimiter{rps: rps, burst: 5, log: log}
}

func (l *RateLimiter) getLimiter(key string) *rate.Limiter {
	now := time.Now()
	v, _ := l.visitors.LoadOrStore(key, &visitor{limiter: rate.NewLimiter(l.rps, l.burst), lastSeen: now})
	vi := v.(*visitor)
	vi.mu.Lock()
	vi.lastSeen = now
	vi.mu.Unlock()
	return vi.limiter
}

// Cleanup forgets visitors idle for five minutes, once a minute, until ctx ends.
func (l *RateLimiter) Cleanup(ctx context.Context) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.evict(time.Now().Add(-5 * time.Minute))
		}
	}
}

func (l *RateLimiter) evict(cutoff time.Time) {
	l.visitors.Range(func(k, v interface{}) bool {
		vi := v.(*visitor)
		vi.mu.Lock()
		idle := vi.lastSeen.Before(cutoff)
		vi.mu.Unlock()
		if idle {
			l.visitors.Delete(k)
		}
		return true
	})
}

func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		key := limitKey(r)
		if !l.getLimiter(key).Allow() {
			l.log.Warnw("rate limit exceeded", "key", key, "path", r.URL.Path)
			response.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func limitKey(r *http.Request) string {
	if u, ok := auth.UserFrom(r.Context()); ok {
		return "user:" + strconv.FormatInt(u.ID, 10)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || host == "" {
		host = r.RemoteAddr
	}
	if host == "" {
		host = "unknown"
	}
	return "ip:" + host
}
