package mock

import (
	"context"

	"github.com/fwojciec/thronewatch"
)

var _ thronewatch.SnapshotService = (*SnapshotService)(nil)

// SnapshotService is a mock implementation of thronewatch.SnapshotService.
type SnapshotService struct {
	FindSnapshotFn   func(ctx context.Context, targetKey string) (*thronewatch.Snapshot, error)
	SaveSnapshotFn   func(ctx context.Context, snapshot *thronewatch.Snapshot) error
	UpdateSnapshotFn func(ctx context.Context, targetKey string, fn func(prev *thronewatch.Snapshot) (*thronewatch.Snapshot, error)) error
	DeleteSnapshotFn func(ctx context.Context, targetKey string) error
}

func (s *SnapshotService) FindSnapshot(ctx context.Context, targetKey string) (*thronewatch.Snapshot, error) {
	return s.FindSnapshotFn(ctx, targetKey)
}

func (s *SnapshotService) SaveSnapshot(ctx context.Context, snapshot *thronewatch.Snapshot) error {
	return s.SaveSnapshotFn(ctx, snapshot)
}

func (s *SnapshotService) UpdateSnapshot(ctx context.Context, targetKey string, fn func(prev *thronewatch.Snapshot) (*thronewatch.Snapshot, error)) error {
	return s.UpdateSnapshotFn(ctx, targetKey, fn)
}

func (s *SnapshotService) DeleteSnapshot(ctx context.Context, targetKey string) error {
	return s.DeleteSnapshotFn(ctx, targetKey)
}
