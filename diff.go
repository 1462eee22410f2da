package thronewatch

// ChangeReport describes how a target's wishlist changed between two snapshots.
// Reports are built and consumed within a single run and never persisted.
type ChangeReport struct {
	Added        []*Item       `json:"added"`
	Removed      []*Item       `json:"removed"`
	PriceChanges []PriceChange `json:"priceChanges"`
}

// PriceChange records an item whose (price, currency) pair changed.
type PriceChange struct {
	ItemID        string `json:"itemId"`
	Name          string `json:"name"`
	OldPriceCents *int64 `json:"oldPriceCents,omitempty"`
	OldCurrency   string `json:"oldCurrency,omitempty"`
	NewPriceCents *int64 `json:"newPriceCents,omitempty"`
	NewCurrency   string `json:"newCurrency,omitempty"`
}

// Empty reports whether the report contains no changes.
func (r *ChangeReport) Empty() bool {
	return r == nil || len(r.Added) == 0 && len(r.Removed) == 0 && len(r.PriceChanges) == 0
}

// Diff compares two snapshots keyed by item ID. A nil snapshot is treated as
// empty. Added items keep the current snapshot's order, removed items keep the
// previous snapshot's order, and price changes follow the current order.
//
// Only membership and (price, currency) are compared; a renamed item or a new
// image is not a change.
func Diff(prev, curr *Snapshot) *ChangeReport {
	var prevItems, currItems []*Item
	if prev != nil {
		prevItems = prev.Items
	}
	if curr != nil {
		currItems = curr.Items
	}

	prevByID := make(map[string]*Item, len(prevItems))
	for _, item := range prevItems {
		prevByID[item.ID] = item
	}
	currIDs := make(map[string]struct{}, len(currItems))

	report := &ChangeReport{}
	for _, item := range currItems {
		currIDs[item.ID] = struct{}{}

		old, ok := prevByID[item.ID]
		if !ok {
			report.Added = append(report.Added, item)
			continue
		}
		if samePrice(old, item) {
			continue
		}
		report.PriceChanges = append(report.PriceChanges, PriceChange{
			ItemID:        item.ID,
			Name:          item.Name,
			OldPriceCents: old.PriceCents,
			OldCurrency:   old.Currency,
			NewPriceCents: item.PriceCents,
			NewCurrency:   item.Currency,
		})
	}

	for _, item := range prevItems {
		if _, ok := currIDs[item.ID]; !ok {
			report.Removed = append(report.Removed, item)
		}
	}

	return report
}

// samePrice compares (PriceCents, Currency) tuples. An absent price only
// equals another absent price.
func samePrice(a, b *Item) bool {
	if a.Currency != b.Currency {
		return false
	}
	if a.PriceCents == nil || b.PriceCents == nil {
		return a.PriceCents == nil && b.PriceCents == nil
	}
	return *a.PriceCents == *b.PriceCents
}
