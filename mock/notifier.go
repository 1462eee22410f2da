package mock

import (
	"context"

	"github.com/fwojciec/thronewatch"
)

var _ thronewatch.Notifier = (*Notifier)(nil)

// Notifier is a mock implementation of thronewatch.Notifier.
type Notifier struct {
	NotifyFn func(ctx context.Context, targetKey string, report *thronewatch.ChangeReport) error
}

func (n *Notifier) Notify(ctx context.Context, targetKey string, report *thronewatch.ChangeReport) error {
	return n.NotifyFn(ctx, targetKey, report)
}
