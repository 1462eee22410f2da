package monitor

import (
	"context"
	"time"
)

// WatchJitter is the fraction by which each poll interval is randomized.
const WatchJitter = 0.1

// Watch calls pass immediately and then again after every interval, each
// interval randomized by WatchJitter, until ctx is done. An error from pass
// does not stop the loop; it is handed to onError when set.
func Watch(ctx context.Context, interval time.Duration, pass func(context.Context) error, onError func(error)) error {
	for ctx.Err() == nil {
		if err := pass(ctx); err != nil && onError != nil && ctx.Err() == nil {
			onError(err)
		}

		timer := time.NewTimer(Jitter(interval, WatchJitter))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
	return nil
}
