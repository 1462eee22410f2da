package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fwojciec/thronewatch"
)

// Compile-time interface verification.
var _ thronewatch.SnapshotService = (*SnapshotService)(nil)

// SnapshotService implements thronewatch.SnapshotService using SQLite.
// A snapshot is one row in snapshots plus its items in page order.
type SnapshotService struct {
	db *DB
}

// NewSnapshotService creates a new SnapshotService.
func NewSnapshotService(db *DB) *SnapshotService {
	return &SnapshotService{db: db}
}

// FindSnapshot returns the stored snapshot for a target, or an empty one.
func (s *SnapshotService) FindSnapshot(ctx context.Context, targetKey string) (*thronewatch.Snapshot, error) {
	return findSnapshot(ctx, s.db, targetKey)
}

// SaveSnapshot replaces the stored snapshot for a target.
func (s *SnapshotService) SaveSnapshot(ctx context.Context, snapshot *thronewatch.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveSnapshot(ctx, tx, snapshot); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateSnapshot loads, hands over and replaces the stored snapshot within
// one transaction. Nothing is written when fn fails or returns nil.
func (s *SnapshotService) UpdateSnapshot(ctx context.Context, targetKey string, fn func(prev *thronewatch.Snapshot) (*thronewatch.Snapshot, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	prev, err := findSnapshot(ctx, tx, targetKey)
	if err != nil {
		return err
	}

	next, err := fn(prev)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}

	if next.TargetKey != targetKey {
		return thronewatch.Errorf(thronewatch.EINVALID, "snapshot target %q does not match %q", next.TargetKey, targetKey)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	if err := saveSnapshot(ctx, tx, next); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteSnapshot removes the stored snapshot and its items.
func (s *SnapshotService) DeleteSnapshot(ctx context.Context, targetKey string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE target_key = ?", targetKey)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return thronewatch.Errorf(thronewatch.ENOTFOUND, "no snapshot stored for %s", targetKey)
	}
	return nil
}

func findSnapshot(ctx context.Context, q querier, targetKey string) (*thronewatch.Snapshot, error) {
	snapshot := &thronewatch.Snapshot{TargetKey: targetKey}

	var takenAt string
	err := q.QueryRowContext(ctx, `
		SELECT taken_at FROM snapshots WHERE target_key = ?
	`, targetKey).Scan(&takenAt)
	if err == sql.ErrNoRows {
		return snapshot, nil
	}
	if err != nil {
		return nil, err
	}

	if snapshot.TakenAt, err = parseRFC3339(takenAt, "taken_at"); err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT item_id, name, price_cents, currency, product_url, image_url, available, native_id, first_seen
		FROM items
		WHERE target_key = ?
		ORDER BY position ASC
	`, targetKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item thronewatch.Item
		var price, available sql.NullInt64
		var firstSeen string

		if err := rows.Scan(&item.ID, &item.Name, &price, &item.Currency, &item.ProductURL,
			&item.ImageURL, &available, &item.NativeID, &firstSeen); err != nil {
			return nil, err
		}

		if price.Valid {
			cents := price.Int64
			item.PriceCents = &cents
		}
		if available.Valid {
			v := available.Int64 != 0
			item.Available = &v
		}
		if item.FirstSeen, err = parseRFC3339(firstSeen, "first_seen"); err != nil {
			return nil, err
		}

		snapshot.Items = append(snapshot.Items, &item)
	}

	return snapshot, rows.Err()
}

func saveSnapshot(ctx context.Context, q querier, snapshot *thronewatch.Snapshot) error {
	if snapshot.TakenAt.IsZero() {
		snapshot.TakenAt = time.Now().UTC()
	}

	if _, err := q.ExecContext(ctx, `
		INSERT INTO snapshots (target_key, taken_at, item_count)
		VALUES (?, ?, ?)
		ON CONFLICT(target_key) DO UPDATE SET taken_at = excluded.taken_at, item_count = excluded.item_count
	`, snapshot.TargetKey, formatTime(snapshot.TakenAt), len(snapshot.Items)); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}

	if _, err := q.ExecContext(ctx, "DELETE FROM items WHERE target_key = ?", snapshot.TargetKey); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}

	for i, item := range snapshot.Items {
		firstSeen := item.FirstSeen
		if firstSeen.IsZero() {
			firstSeen = snapshot.TakenAt
		}

		if _, err := q.ExecContext(ctx, `
			INSERT INTO items (target_key, position, item_id, name, price_cents, currency, product_url, image_url, available, native_id, first_seen)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, snapshot.TargetKey, i, item.ID, item.Name, nullInt64(item.PriceCents), item.Currency,
			item.ProductURL, item.ImageURL, nullBool(item.Available), item.NativeID, formatTime(firstSeen)); err != nil {
			return fmt.Errorf("insert item %s: %w", item.ID, err)
		}
	}

	return nil
}
