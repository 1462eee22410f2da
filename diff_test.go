package thronewatch_test

import (
	"testing"

	"github.com/fwojciec/thronewatch"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cents(v int64) *int64 {
	return &v
}

func item(id string, price *int64, currency string) *thronewatch.Item {
	return &thronewatch.Item{
		ID:         id,
		Name:       "Item " + id,
		PriceCents: price,
		Currency:   currency,
		ProductURL: "https://example.com/p/" + id,
	}
}

func snapshot(items ...*thronewatch.Item) *thronewatch.Snapshot {
	return &thronewatch.Snapshot{TargetKey: "https://throne.com/u/alice/wishlist", Items: items}
}

func ids(items []*thronewatch.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestDiff(t *testing.T) {
	t.Parallel()

	t.Run("reports added item and price change", func(t *testing.T) {
		t.Parallel()

		prev := snapshot(item("id1", cents(1000), "USD"))
		curr := snapshot(item("id1", cents(1200), "USD"), item("id2", nil, ""))

		report := thronewatch.Diff(prev, curr)

		assert.Equal(t, []string{"id2"}, ids(report.Added))
		assert.Empty(t, report.Removed)
		want := []thronewatch.PriceChange{{
			ItemID:        "id1",
			Name:          "Item id1",
			OldPriceCents: cents(1000),
			OldCurrency:   "USD",
			NewPriceCents: cents(1200),
			NewCurrency:   "USD",
		}}
		if diff := cmp.Diff(want, report.PriceChanges); diff != "" {
			t.Errorf("price changes mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("first run reports everything as added", func(t *testing.T) {
		t.Parallel()

		curr := snapshot(item("id1", cents(100), "USD"), item("id2", cents(200), "USD"))

		report := thronewatch.Diff(&thronewatch.Snapshot{}, curr)

		assert.Equal(t, []string{"id1", "id2"}, ids(report.Added))
		assert.Empty(t, report.Removed)
		assert.Empty(t, report.PriceChanges)
	})

	t.Run("treats nil snapshots as empty", func(t *testing.T) {
		t.Parallel()

		report := thronewatch.Diff(nil, nil)

		assert.True(t, report.Empty())
	})

	t.Run("reports removed items in previous order", func(t *testing.T) {
		t.Parallel()

		prev := snapshot(item("a", nil, ""), item("b", nil, ""), item("c", nil, ""))
		curr := snapshot(item("b", nil, ""))

		report := thronewatch.Diff(prev, curr)

		assert.Empty(t, report.Added)
		assert.Equal(t, []string{"a", "c"}, ids(report.Removed))
	})

	t.Run("two absent prices are not a change", func(t *testing.T) {
		t.Parallel()

		report := thronewatch.Diff(snapshot(item("a", nil, "")), snapshot(item("a", nil, "")))

		assert.True(t, report.Empty())
	})

	t.Run("absent to present price is a change", func(t *testing.T) {
		t.Parallel()

		report := thronewatch.Diff(snapshot(item("a", nil, "")), snapshot(item("a", cents(500), "USD")))

		require.Len(t, report.PriceChanges, 1)
		assert.Nil(t, report.PriceChanges[0].OldPriceCents)
		assert.Equal(t, int64(500), *report.PriceChanges[0].NewPriceCents)
	})

	t.Run("present to absent price is a change", func(t *testing.T) {
		t.Parallel()

		report := thronewatch.Diff(snapshot(item("a", cents(500), "USD")), snapshot(item("a", nil, "")))

		require.Len(t, report.PriceChanges, 1)
		assert.Nil(t, report.PriceChanges[0].NewPriceCents)
	})

	t.Run("currency change with same amount is a change", func(t *testing.T) {
		t.Parallel()

		report := thronewatch.Diff(snapshot(item("a", cents(500), "USD")), snapshot(item("a", cents(500), "EUR")))

		require.Len(t, report.PriceChanges, 1)
		assert.Equal(t, "USD", report.PriceChanges[0].OldCurrency)
		assert.Equal(t, "EUR", report.PriceChanges[0].NewCurrency)
	})

	t.Run("ignores name and image drift", func(t *testing.T) {
		t.Parallel()

		old := item("a", cents(500), "USD")
		renamed := item("a", cents(500), "USD")
		renamed.Name = "Renamed"
		renamed.ImageURL = "https://cdn.example.com/new.png"

		report := thronewatch.Diff(snapshot(old), snapshot(renamed))

		assert.True(t, report.Empty())
	})

	t.Run("diffing a snapshot with itself is empty", func(t *testing.T) {
		t.Parallel()

		s := snapshot(item("a", cents(1), "USD"), item("b", nil, ""), item("c", cents(3), "EUR"))

		assert.True(t, thronewatch.Diff(s, s).Empty())
	})

	t.Run("swapping arguments swaps added and removed", func(t *testing.T) {
		t.Parallel()

		a := snapshot(item("keep", cents(100), "USD"), item("gone", nil, ""))
		b := snapshot(item("new", cents(5), "USD"), item("keep", cents(150), "USD"))

		ab := thronewatch.Diff(a, b)
		ba := thronewatch.Diff(b, a)

		assert.Equal(t, ids(ab.Added), ids(ba.Removed))
		assert.Equal(t, ids(ab.Removed), ids(ba.Added))
		require.Len(t, ab.PriceChanges, 1)
		require.Len(t, ba.PriceChanges, 1)
		assert.Equal(t, ab.PriceChanges[0].ItemID, ba.PriceChanges[0].ItemID)
		assert.Equal(t, ab.PriceChanges[0].OldPriceCents, ba.PriceChanges[0].NewPriceCents)
		assert.Equal(t, ab.PriceChanges[0].NewPriceCents, ba.PriceChanges[0].OldPriceCents)
	})
}

func TestChangeReport_Empty(t *testing.T) {
	t.Parallel()

	var nilReport *thronewatch.ChangeReport
	assert.True(t, nilReport.Empty())
	assert.True(t, (&thronewatch.ChangeReport{}).Empty())
	assert.False(t, (&thronewatch.ChangeReport{Removed: []*thronewatch.Item{item("a", nil, "")}}).Empty())
}

func TestSnapshot_Validate(t *testing.T) {
	t.Parallel()

	t.Run("rejects duplicate item IDs", func(t *testing.T) {
		t.Parallel()

		err := snapshot(item("a", nil, ""), item("a", nil, "")).Validate()

		assert.Equal(t, thronewatch.EINVALID, thronewatch.ErrorCode(err))
	})

	t.Run("rejects missing target key", func(t *testing.T) {
		t.Parallel()

		err := (&thronewatch.Snapshot{}).Validate()

		assert.Equal(t, thronewatch.EINVALID, thronewatch.ErrorCode(err))
	})

	t.Run("accepts unique items", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, snapshot(item("a", nil, ""), item("b", nil, "")).Validate())
	})
}
