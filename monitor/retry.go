package monitor

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (string, error)

// DefaultRetryDelays returns the backoff delays for fetch retries:
// 1s, 2s, 4s, 8s (five attempts in total).
func DefaultRetryDelays() []time.Duration {
	return Backoff(time.Second, 30*time.Second, 4)
}

// Backoff returns n exponentially growing delays starting at base and capped
// at limit.
func Backoff(base, limit time.Duration, n int) []time.Duration {
	delays := make([]time.Duration, 0, n)
	d := base
	for i := 0; i < n; i++ {
		delays = append(delays, min(d, limit))
		d *= 2
	}
	return delays
}

// Jitter randomizes d by up to ±fraction of its length.
func Jitter(d time.Duration, fraction float64) time.Duration {
	spread := time.Duration(float64(d) * fraction)
	if spread <= 0 {
		return d
	}
	return d - spread + rand.N(2*spread+1)
}

// FetchWithRetry calls fetch until it succeeds, retrying after each delay in
// turn with a little jitter. It gives up early when ctx is done. The logger,
// if provided, receives one record per retry.
func FetchWithRetry(ctx context.Context, url string, fetch FetchFunc, logger *slog.Logger, delays []time.Duration) (string, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		html, err := fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 {
			break
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		delay := Jitter(delays[attempt], 0.2)
		if logger != nil {
			logger.Warn("fetch failed, retrying",
				slog.String("url", url),
				slog.Int("attempt", attempt+2),
				slog.Duration("delay", delay),
				slog.Any("error", err),
			)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}

	return "", lastErr
}
