package api

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// tokenBucket is a token bucket refilled at rate tokens per second.
type tokenBucket struct {
	tokens     float64
	lastUpdate time.Time
}

// clientLimiter keeps one token bucket per client address.
type clientLimiter struct {
	rate    float64
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	mu        sync.Mutex
	buckets   map[string]*tokenBucket
	lastSweep time.Time
}

func newClientLimiter(rate float64, burst int) *clientLimiter {
	if burst < 1 {
		burst = 1
	}
	return &clientLimiter{
		rate:    rate,
		burst:   burst,
		idleTTL: 10 * time.Minute,
		now:     time.Now,
		buckets: make(map[string]*tokenBucket),
	}
}

// allow takes a token for client. When the bucket is empty it returns false
// and how long until the next token.
func (l *clientLimiter) allow(client string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[client]
	if !ok {
		b = &tokenBucket{tokens: float64(l.burst), lastUpdate: now}
		l.buckets[client] = b
	}

	b.tokens += now.Sub(b.lastUpdate).Seconds() * l.rate
	if b.tokens > float64(l.burst) {
		b.tokens = float64(l.burst)
	}
	b.lastUpdate = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	wait := time.Duration((1 - b.tokens) / l.rate * float64(time.Second))
	return false, wait
}

// sweep drops buckets idle for longer than idleTTL. A full bucket carries no
// state, so forgetting it is safe.
func (l *clientLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idleTTL {
		return
	}
	l.lastSweep = now
	for k, b := range l.buckets {
		if now.Sub(b.lastUpdate) > l.idleTTL {
			delete(l.buckets, k)
		}
	}
}

// rateLimit rejects requests over the client's budget with 429.
func (s *Server) rateLimit(l *clientLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := l.allow(clientKey(r))
			if !ok {
				secs := int(wait/time.Second) + 1
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey is the request's remote host. RealIP has already applied
// X-Forwarded-For.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
