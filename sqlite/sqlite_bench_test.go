package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/fwojciec/thronewatch"
	"github.com/fwojciec/thronewatch/sqlite"
	"github.com/stretchr/testify/require"
)

// BenchmarkUpdateSnapshot measures one load-diff-store cycle for a wishlist of
// typical size against a file-backed database.
func BenchmarkUpdateSnapshot(b *testing.B) {
	for _, size := range []int{10, 100, 500} {
		b.Run(fmt.Sprintf("items_%d", size), func(b *testing.B) {
			benchmarkUpdateSnapshot(b, size)
		})
	}
}

func benchmarkUpdateSnapshot(b *testing.B, size int) {
	b.Helper()

	db := sqlite.NewDB(filepath.Join(b.TempDir(), "bench.db"))
	require.NoError(b, db.Open())
	defer db.Close()

	svc := sqlite.NewSnapshotService(db)
	ctx := context.Background()
	key := "https://throne.com/u/bench/wishlist"

	items := make([]*thronewatch.Item, size)
	for i := range items {
		price := int64(1000 + i)
		items[i] = &thronewatch.Item{
			ID:         fmt.Sprintf("item:%06d", i),
			Name:       fmt.Sprintf("Gift %d", i),
			PriceCents: &price,
			Currency:   "USD",
			ProductURL: fmt.Sprintf("https://shop.example.com/gift/%d", i),
		}
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		err := svc.UpdateSnapshot(ctx, key, func(prev *thronewatch.Snapshot) (*thronewatch.Snapshot, error) {
			curr := &thronewatch.Snapshot{TargetKey: key, Items: items}
			_ = thronewatch.Diff(prev, curr)
			return curr, nil
		})
		if err != nil {
			b.Fatal(err)
		}
	}
}
