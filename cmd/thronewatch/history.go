package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/thronewatch"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	filter := thronewatch.RunFilter{Limit: c.Limit}

	if c.Target != "" {
		target, err := thronewatch.ParseTarget(c.Target)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", thronewatch.ErrorMessage(err))
			return err
		}
		filter.TargetKey = &target.Key
	}
	if c.Status != "" {
		status := thronewatch.RunStatus(c.Status)
		if !status.Valid() {
			fmt.Fprintf(deps.Stderr, "error: unknown status %q\n", c.Status)
			return thronewatch.Errorf(thronewatch.EINVALID, "unknown status %q", c.Status)
		}
		filter.Status = &status
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", thronewatch.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs recorded. Use 'thronewatch run' to check your targets.")
		return nil
	}

	for _, run := range runs {
		line := fmt.Sprintf("%s  %s  %s  %d items", run.StartedAt.UTC().Format(time.DateTime), run.TargetKey, run.Status, run.ItemCount)
		if run.Added+run.Removed+run.PriceChanges > 0 {
			line += fmt.Sprintf(" (+%d -%d ~%d)", run.Added, run.Removed, run.PriceChanges)
		}
		if run.Error != "" {
			line += "  error: " + run.Error
		}
		fmt.Fprintln(deps.Stdout, line)
	}

	return nil
}
