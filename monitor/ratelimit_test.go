package monitor_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/thronewatch"
	"github.com/fwojciec/thronewatch/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostLimiter(t *testing.T) {
	t.Parallel()

	t.Run("implements thronewatch.DomainLimiter interface", func(t *testing.T) {
		t.Parallel()
		var _ thronewatch.DomainLimiter = monitor.NewHostLimiter(1)
	})

	t.Run("first request to a domain is immediate", func(t *testing.T) {
		t.Parallel()

		limiter := monitor.NewHostLimiter(10)

		start := time.Now()
		err := limiter.Wait(context.Background(), "throne.com")

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("spaces requests to the same domain", func(t *testing.T) {
		t.Parallel()

		limiter := monitor.NewHostLimiter(10)
		require.NoError(t, limiter.Wait(context.Background(), "throne.com"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "throne.com")

		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})

	t.Run("different domains have independent limits", func(t *testing.T) {
		t.Parallel()

		limiter := monitor.NewHostLimiter(10)
		require.NoError(t, limiter.Wait(context.Background(), "throne.com"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "shop.example.com")

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("treats host spellings as one host", func(t *testing.T) {
		t.Parallel()

		limiter := monitor.NewHostLimiter(10)
		require.NoError(t, limiter.Wait(context.Background(), "WWW.Throne.com:443"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "throne.com")

		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})

	t.Run("non-positive rate uses the default", func(t *testing.T) {
		t.Parallel()

		limiter := monitor.NewHostLimiter(0)
		require.NoError(t, limiter.Wait(context.Background(), "throne.com"))

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		assert.Error(t, limiter.Wait(ctx, "throne.com"))
	})

	t.Run("per-host rate overrides the default", func(t *testing.T) {
		t.Parallel()

		limiter := monitor.NewHostLimiter(1)
		limiter.PerHost = map[string]float64{"shop.example.com": 100}
		require.NoError(t, limiter.Wait(context.Background(), "shop.example.com"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "shop.example.com")

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 200*time.Millisecond)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		limiter := monitor.NewHostLimiter(1)
		require.NoError(t, limiter.Wait(context.Background(), "throne.com"))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		assert.Error(t, limiter.Wait(ctx, "throne.com"))
	})

	t.Run("concurrent waits all complete", func(t *testing.T) {
		t.Parallel()

		limiter := monitor.NewHostLimiter(100)

		var wg sync.WaitGroup
		var completed atomic.Int32
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Wait(context.Background(), "throne.com") == nil {
					completed.Add(1)
				}
			}()
		}

		wg.Wait()
		assert.Equal(t, int32(5), completed.Load())
	})
}

func TestHostKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare host", "throne.com", "throne.com"},
		{"uppercase with www", "WWW.Throne.com", "throne.com"},
		{"host with port", "throne.com:8443", "throne.com"},
		{"full URL", "https://www.throne.com/u/alice/wishlist?utm_source=x", "throne.com"},
		{"subdomain kept", "https://shop.example.com/gift", "shop.example.com"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, monitor.HostKey(tt.in))
		})
	}
}
