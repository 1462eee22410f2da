package thronewatch

import (
	"context"
	"time"
)

// Item represents one wishlist entry at a point in time.
type Item struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents *int64 `json:"priceCents,omitempty"` // minor currency units, nil when unknown
	Currency   string `json:"currency,omitempty"`
	ProductURL string `json:"productUrl"`
	ImageURL   string `json:"imageUrl,omitempty"`
	Available  *bool  `json:"available,omitempty"`

	// NativeID is the identifier exposed by the page itself, if any.
	// It feeds ResolveID and is not compared between snapshots.
	NativeID string `json:"nativeId,omitempty"`

	// FirstSeen is when the item first appeared for its target. It carries
	// over between snapshots for as long as the item stays listed.
	FirstSeen time.Time `json:"firstSeen"`
}

// Validate returns an error if the item contains invalid fields.
func (i *Item) Validate() error {
	if i.ID == "" {
		return Errorf(EINVALID, "item ID required")
	}
	if i.ProductURL == "" {
		return Errorf(EINVALID, "item product URL required")
	}
	return nil
}

// Snapshot is the ordered set of items observed for one target by one
// extraction run. A zero TakenAt means no snapshot has been stored yet.
type Snapshot struct {
	TargetKey string    `json:"targetKey"`
	Items     []*Item   `json:"items"`
	TakenAt   time.Time `json:"takenAt"`
}

// Initial reports whether the snapshot stands in for "nothing stored yet".
func (s *Snapshot) Initial() bool {
	return s == nil || s.TakenAt.IsZero()
}

// Validate returns an error if the snapshot contains invalid or duplicate items.
func (s *Snapshot) Validate() error {
	if s.TargetKey == "" {
		return Errorf(EINVALID, "snapshot target key required")
	}
	seen := make(map[string]struct{}, len(s.Items))
	for _, item := range s.Items {
		if err := item.Validate(); err != nil {
			return err
		}
		if _, ok := seen[item.ID]; ok {
			return Errorf(EINVALID, "duplicate item ID %q in snapshot", item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

// SnapshotService represents a service for managing stored snapshots.
type SnapshotService interface {
	// FindSnapshot returns the stored snapshot for a target.
	// Returns an empty snapshot (zero TakenAt) if none has been stored.
	FindSnapshot(ctx context.Context, targetKey string) (*Snapshot, error)

	// SaveSnapshot replaces the stored snapshot for a target.
	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error

	// UpdateSnapshot loads the stored snapshot and passes it to fn within a
	// single transaction. If fn returns a non-nil snapshot it replaces the
	// stored one; if fn returns an error or nil, nothing is written.
	UpdateSnapshot(ctx context.Context, targetKey string, fn func(prev *Snapshot) (*Snapshot, error)) error

	// DeleteSnapshot removes the stored snapshot for a target.
	// Returns ENOTFOUND if no snapshot exists.
	DeleteSnapshot(ctx context.Context, targetKey string) error
}
