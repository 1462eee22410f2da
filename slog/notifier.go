package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/thronewatch"
)

// Ensure LoggingNotifier implements thronewatch.Notifier.
var _ thronewatch.Notifier = (*LoggingNotifier)(nil)

// LoggingNotifier wraps a Notifier with logging.
type LoggingNotifier struct {
	next   thronewatch.Notifier
	logger *slog.Logger
}

// NewLoggingNotifier creates a new LoggingNotifier.
func NewLoggingNotifier(next thronewatch.Notifier, logger *slog.Logger) *LoggingNotifier {
	return &LoggingNotifier{next: next, logger: logger}
}

// Notify logs the report summary and delegates to the wrapped notifier.
func (n *LoggingNotifier) Notify(ctx context.Context, targetKey string, report *thronewatch.ChangeReport) (err error) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelError
		}
		var added, removed, priceChanges int
		if report != nil {
			added, removed, priceChanges = len(report.Added), len(report.Removed), len(report.PriceChanges)
		}
		n.logger.Log(ctx, level, "notify",
			"target", targetKey,
			"added", added,
			"removed", removed,
			"price_changes", priceChanges,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return n.next.Notify(ctx, targetKey, report)
}
