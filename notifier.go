package thronewatch

import "context"

// Notifier delivers change reports. It owns all formatting and delivery.
type Notifier interface {
	Notify(ctx context.Context, targetKey string, report *ChangeReport) error
}
