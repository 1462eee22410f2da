package monitor

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/fwojciec/thronewatch"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond is the per-host rate used when none is given.
const DefaultRequestsPerSecond = 1.0

var _ thronewatch.DomainLimiter = (*HostLimiter)(nil)

// HostLimiter spaces out page fetches per host. Hosts are compared in the
// form HostKey returns, so "WWW.Throne.com:443" and "throne.com" share one
// bucket. Fetches to different hosts do not wait on each other.
type HostLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit

	// PerHost overrides the rate for individual hosts, keyed by HostKey.
	PerHost map[string]float64
}

// NewHostLimiter returns a limiter allowing rps fetches per second per host
// with no burst. A non-positive rps selects DefaultRequestsPerSecond.
func NewHostLimiter(rps float64) *HostLimiter {
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	return &HostLimiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Limit(rps),
	}
}

// Wait blocks until a fetch from host is allowed or ctx is done.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	return l.bucket(HostKey(host)).Wait(ctx)
}

func (l *HostLimiter) bucket(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[key]; ok {
		return b
	}
	limit := l.limit
	if rps, ok := l.PerHost[key]; ok && rps > 0 {
		limit = rate.Limit(rps)
	}
	b := rate.NewLimiter(limit, 1)
	l.buckets[key] = b
	return b
}

// HostKey reduces a host, or a full URL, to the key used for rate limiting:
// lowercase, without port or a leading "www.".
func HostKey(hostOrURL string) string {
	s := strings.TrimSpace(hostOrURL)
	if strings.Contains(s, "://") {
		if normalized, err := thronewatch.NormalizeURL(s); err == nil {
			s = normalized
		}
		if u, err := url.Parse(s); err == nil {
			s = u.Hostname()
		}
	} else if u, err := url.Parse("//" + s); err == nil && u.Hostname() != "" {
		s = u.Hostname()
	}
	return strings.TrimPrefix(strings.ToLower(s), "www.")
}
