package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/thronewatch"
	"github.com/fwojciec/thronewatch/monitor"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	targets, err := c.parseTargets(deps)
	if err != nil {
		return err
	}
	return runPass(deps.Ctx, deps, targets)
}

// Run executes the watch command. It returns nil once interrupted.
func (c *WatchCmd) Run(deps *Dependencies) error {
	targets, err := c.parseTargets(deps)
	if err != nil {
		return err
	}

	interval := c.Interval
	if c.PollMinutes > 0 {
		interval = time.Duration(c.PollMinutes) * time.Minute
	}
	if interval <= 0 {
		fmt.Fprintln(deps.Stderr, "error: interval must be positive")
		return thronewatch.Errorf(thronewatch.EINVALID, "interval must be positive")
	}

	logger := deps.logger()
	logger.Info("watching", "targets", len(targets), "interval", interval)

	return monitor.Watch(deps.Ctx, interval,
		func(ctx context.Context) error {
			return runPass(ctx, deps, targets)
		},
		func(err error) {
			logger.Warn("pass finished with failures", "err", err)
		},
	)
}

func (f *MonitorFlags) parseTargets(deps *Dependencies) ([]thronewatch.Target, error) {
	targets, err := thronewatch.ParseTargets(f.Targets)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", thronewatch.ErrorMessage(err))
		return nil, err
	}
	if len(targets) == 0 {
		fmt.Fprintln(deps.Stderr, "error: no targets configured. Pass --target or set THRONE_TARGETS.")
		return nil, thronewatch.Errorf(thronewatch.EINVALID, "no targets configured")
	}
	return targets, nil
}

// runPass checks every target once, printing one line per target.
func runPass(ctx context.Context, deps *Dependencies, targets []thronewatch.Target) error {
	if deps.Runner == nil {
		return thronewatch.Errorf(thronewatch.EINTERNAL, "runner not configured")
	}

	progress := func(event monitor.ProgressEvent) {
		switch event.Type {
		case monitor.ProgressCompleted:
			fmt.Fprintln(deps.Stdout, FormatResult(event.Result))
			if event.Result.NotifyErr != nil {
				fmt.Fprintf(deps.Stderr, "warning: notify %s: %v\n", event.Target.Key, event.Result.NotifyErr)
			}
		case monitor.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "error: %s: %v\n", event.Target.Key, event.Result.Err)
			if event.Result.DumpPath != "" {
				fmt.Fprintf(deps.Stderr, "  saved page to %s\n", event.Result.DumpPath)
			}
		}
	}

	results, err := deps.Runner.RunAll(ctx, targets, progress)
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return thronewatch.Errorf(thronewatch.EINTERNAL, "%d of %d targets failed", failed, len(results))
	}
	return nil
}

// FormatResult summarizes a successful target result on one line.
// Example: https://throne.com/u/alice/wishlist  changed  12 items (+1 -0 ~2) [next-data]
func FormatResult(res *monitor.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %d items", res.Target.Key, res.Status, res.Items)
	if res.Status == thronewatch.RunChanged && res.Report != nil {
		fmt.Fprintf(&b, " (+%d -%d ~%d)", len(res.Report.Added), len(res.Report.Removed), len(res.Report.PriceChanges))
	}
	if res.Strategy != "" {
		fmt.Fprintf(&b, " [%s]", res.Strategy)
	}
	if res.Notified {
		b.WriteString(" notified")
	}
	return b.String()
}
