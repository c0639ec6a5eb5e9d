package httpapi

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// maxLimiterKeys bounds how many per-IP limiters an endpointLimiter keeps
// before pruning.
const maxLimiterKeys = 10000

// endpointLimiter is a set of per-client token-bucket limiters for one class
// of endpoint (agent runs, codegen requests, everything else). Each class
// gets its own requests-per-minute ceiling per SPEC_FULL's rate-limit table.
type endpointLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newEndpointLimiter(perMinute int) *endpointLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &endpointLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
	}
}

// allow reports whether a request keyed by key (typically a client IP) may
// proceed, creating that key's bucket on first use.
func (e *endpointLimiter) allow(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.limiters[key]
	if !ok {
		if len(e.limiters) >= maxLimiterKeys {
			e.prune()
		}
		l = rate.NewLimiter(e.rps, e.burst)
		e.limiters[key] = l
	}
	return l.Allow()
}

// prune drops limiters that are currently at full burst, a proxy for
// "inactive since the last request". Must be called with e.mu held.
func (e *endpointLimiter) prune() {
	for key, l := range e.limiters {
		if l.Tokens() >= float64(e.burst) {
			delete(e.limiters, key)
		}
	}
}

// clientIP extracts the caller's address for rate-limit keying, preferring
// a forwarded-for header (trusted only because this server normally sits
// behind the operator's own reverse proxy) over the raw socket address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
