// Package monitor runs the fetch, extract, diff, store and notify cycle for
// monitored wishlists.
package monitor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/thronewatch"
	"golang.org/x/sync/errgroup"
)

// Runner processes targets. Fetcher, Extractor and Snapshots are required;
// the remaining collaborators are optional.
type Runner struct {
	Fetcher     thronewatch.Fetcher
	Extractor   thronewatch.Extractor
	Snapshots   thronewatch.SnapshotService
	Runs        thronewatch.RunService
	Notifier    thronewatch.Notifier
	Dumper      thronewatch.PageDumper
	RateLimiter thronewatch.DomainLimiter
	Logger      *slog.Logger

	RetryDelays []time.Duration
	Concurrency int

	// NotifyInitial sends a report for the first snapshot of a target, in
	// which every item counts as added.
	NotifyInitial bool

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Result holds the outcome of processing one target.
type Result struct {
	Target   thronewatch.Target
	Status   thronewatch.RunStatus
	Strategy string
	Items    int
	Report   *thronewatch.ChangeReport

	// Notified is set when the report was delivered. NotifyErr holds a
	// delivery failure; it does not undo the stored snapshot.
	Notified  bool
	NotifyErr error

	// DumpPath is where the page was saved after a failed extraction.
	DumpPath string

	Err error
}

// ProgressEvent reports progress during RunAll.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	Target    thronewatch.Target
	Result    *Result
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting progress. Calls are serialized.
type ProgressFunc func(event ProgressEvent)

// RunTarget fetches and extracts the target's page, diffs the items against
// the stored snapshot and stores the new snapshot in one transaction, then
// delivers the report. A failed fetch (EFETCH) or extraction (EEXTRACT)
// leaves the stored snapshot untouched and produces no report.
// The returned Result is never nil; its Err matches the returned error.
func (r *Runner) RunTarget(ctx context.Context, target thronewatch.Target) (*Result, error) {
	started := r.now()
	res := &Result{Target: target}
	res.Err = r.runTarget(ctx, target, res)
	r.record(ctx, res, started)
	return res, res.Err
}

func (r *Runner) runTarget(ctx context.Context, target thronewatch.Target, res *Result) error {
	html, err := r.fetch(ctx, target.URL)
	if err != nil {
		res.Status = thronewatch.RunFetchFailed
		return thronewatch.Errorf(thronewatch.EFETCH, "fetch %s: %v", target.URL, err)
	}

	ex, err := r.Extractor.Extract(&thronewatch.Page{URL: target.URL, HTML: html})
	if err != nil {
		res.Status = thronewatch.RunExtractionFailed
		res.DumpPath = r.dump(ctx, target.URL, html)
		if thronewatch.ErrorCode(err) == thronewatch.EEXTRACT {
			return err
		}
		return thronewatch.Errorf(thronewatch.EEXTRACT, "extract %s: %v", target.URL, err)
	}
	res.Strategy = ex.Strategy
	res.Items = len(ex.Items)

	var report *thronewatch.ChangeReport
	var initial bool
	err = r.Snapshots.UpdateSnapshot(ctx, target.Key, func(prev *thronewatch.Snapshot) (*thronewatch.Snapshot, error) {
		now := r.now()
		curr := &thronewatch.Snapshot{TargetKey: target.Key, Items: ex.Items, TakenAt: now}
		carryFirstSeen(prev, curr, now)
		report = thronewatch.Diff(prev, curr)
		initial = prev.Initial()
		return curr, nil
	})
	if err != nil {
		res.Status = thronewatch.RunFailed
		return fmt.Errorf("store snapshot for %s: %w", target.Key, err)
	}
	res.Report = report

	switch {
	case initial:
		res.Status = thronewatch.RunInitial
	case report.Empty():
		res.Status = thronewatch.RunUnchanged
	default:
		res.Status = thronewatch.RunChanged
	}

	if report.Empty() || r.Notifier == nil || (initial && !r.NotifyInitial) {
		return nil
	}
	if err := r.Notifier.Notify(ctx, target.Key, report); err != nil {
		res.NotifyErr = err
		r.logger().Error("notify failed", slog.String("target", target.Key), slog.Any("error", err))
		return nil
	}
	res.Notified = true
	return nil
}

// RunAll processes targets with at most Concurrency running at once.
// Failures are reported per target in the results, which follow the order
// of targets. The returned error is only set when ctx is canceled.
func (r *Runner) RunAll(ctx context.Context, targets []thronewatch.Target, progress ProgressFunc) ([]*Result, error) {
	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	var mu sync.Mutex
	completed := 0
	emit := func(e ProgressEvent) {
		if progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if e.Type == ProgressCompleted || e.Type == ProgressFailed {
			completed++
		}
		e.Completed = completed
		e.Total = len(targets)
		progress(e)
	}

	results := make([]*Result, len(targets))
	g := new(errgroup.Group)
	g.SetLimit(concurrency)
	for i, target := range targets {
		g.Go(func() error {
			emit(ProgressEvent{Type: ProgressStarted, Target: target})
			res, err := r.RunTarget(ctx, target)
			results[i] = res
			if err != nil {
				emit(ProgressEvent{Type: ProgressFailed, Target: target, Result: res})
			} else {
				emit(ProgressEvent{Type: ProgressCompleted, Target: target, Result: res})
			}
			return nil
		})
	}
	_ = g.Wait()

	emit(ProgressEvent{Type: ProgressFinished})
	return results, ctx.Err()
}

func (r *Runner) fetch(ctx context.Context, rawURL string) (string, error) {
	fetch := r.Fetcher.Fetch
	if r.RateLimiter != nil {
		if host := HostKey(rawURL); host != "" {
			fetch = func(ctx context.Context, rawURL string) (string, error) {
				if err := r.RateLimiter.Wait(ctx, host); err != nil {
					return "", err
				}
				return r.Fetcher.Fetch(ctx, rawURL)
			}
		}
	}

	delays := r.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	return FetchWithRetry(ctx, rawURL, fetch, r.logger(), delays)
}

func (r *Runner) dump(ctx context.Context, rawURL, html string) string {
	if r.Dumper == nil {
		return ""
	}
	path, err := r.Dumper.Dump(ctx, rawURL, html)
	if err != nil {
		r.logger().Warn("dump page failed", slog.String("url", rawURL), slog.Any("error", err))
		return ""
	}
	return path
}

func (r *Runner) record(ctx context.Context, res *Result, started time.Time) {
	if r.Runs == nil {
		return
	}

	run := &thronewatch.Run{
		TargetKey:  res.Target.Key,
		Status:     res.Status,
		Strategy:   res.Strategy,
		ItemCount:  res.Items,
		StartedAt:  started,
		FinishedAt: r.now(),
	}
	if res.Report != nil {
		run.Added = len(res.Report.Added)
		run.Removed = len(res.Report.Removed)
		run.PriceChanges = len(res.Report.PriceChanges)
	}
	switch {
	case res.Err != nil:
		run.Error = res.Err.Error()
	case res.NotifyErr != nil:
		run.Error = "notify: " + res.NotifyErr.Error()
	}

	// The run is recorded even when ctx was canceled mid-target.
	if err := r.Runs.CreateRun(context.WithoutCancel(ctx), run); err != nil {
		r.logger().Error("record run failed", slog.String("target", res.Target.Key), slog.Any("error", err))
	}
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// carryFirstSeen copies FirstSeen from items already present in prev and
// stamps new items with now.
func carryFirstSeen(prev, curr *thronewatch.Snapshot, now time.Time) {
	seen := make(map[string]time.Time)
	if prev != nil {
		for _, item := range prev.Items {
			seen[item.ID] = item.FirstSeen
		}
	}
	for _, item := range curr.Items {
		if t, ok := seen[item.ID]; ok && !t.IsZero() {
			item.FirstSeen = t
		} else {
			item.FirstSeen = now
		}
	}
}
