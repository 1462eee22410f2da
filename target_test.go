package thronewatch_test

import (
	"testing"

	"github.com/fwojciec/thronewatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	t.Parallel()

	t.Run("expands username to wishlist URL", func(t *testing.T) {
		t.Parallel()

		target, err := thronewatch.ParseTarget("alice")

		require.NoError(t, err)
		assert.Equal(t, "https://throne.com/u/alice/wishlist", target.URL)
		assert.Equal(t, "https://throne.com/u/alice/wishlist", target.Key)
	})

	t.Run("keeps full URL and normalizes key", func(t *testing.T) {
		t.Parallel()

		target, err := thronewatch.ParseTarget("https://Throne.com/u/bob/wishlist/?utm_source=x")

		require.NoError(t, err)
		assert.Equal(t, "https://Throne.com/u/bob/wishlist/?utm_source=x", target.URL)
		assert.Equal(t, "https://throne.com/u/bob/wishlist", target.Key)
	})

	t.Run("rejects empty target", func(t *testing.T) {
		t.Parallel()

		_, err := thronewatch.ParseTarget("  ")

		assert.Equal(t, thronewatch.EINVALID, thronewatch.ErrorCode(err))
	})

	t.Run("rejects username with path characters", func(t *testing.T) {
		t.Parallel()

		_, err := thronewatch.ParseTarget("alice/../bob")

		assert.Equal(t, thronewatch.EINVALID, thronewatch.ErrorCode(err))
	})
}

func TestParseTargets(t *testing.T) {
	t.Parallel()

	targets, err := thronewatch.ParseTargets([]string{"alice", "", "https://throne.com/u/alice/wishlist/", "bob"})

	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, "https://throne.com/u/alice/wishlist", targets[0].Key)
	assert.Equal(t, "https://throne.com/u/bob/wishlist", targets[1].Key)
}
