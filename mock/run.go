package mock

import (
	"context"

	"github.com/fwojciec/thronewatch"
)

var _ thronewatch.RunService = (*RunService)(nil)

// RunService is a mock implementation of thronewatch.RunService.
type RunService struct {
	CreateRunFn func(ctx context.Context, run *thronewatch.Run) error
	FindRunsFn  func(ctx context.Context, filter thronewatch.RunFilter) ([]*thronewatch.Run, error)
}

func (s *RunService) CreateRun(ctx context.Context, run *thronewatch.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FindRuns(ctx context.Context, filter thronewatch.RunFilter) ([]*thronewatch.Run, error) {
	return s.FindRunsFn(ctx, filter)
}
