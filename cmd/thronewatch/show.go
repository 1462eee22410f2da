package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fwojciec/thronewatch"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	target, err := thronewatch.ParseTarget(c.Target)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", thronewatch.ErrorMessage(err))
		return err
	}

	snapshot, err := deps.Snapshots.FindSnapshot(deps.Ctx, target.Key)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", thronewatch.ErrorMessage(err))
		return err
	}
	if snapshot.Initial() {
		fmt.Fprintf(deps.Stderr, "error: no snapshot stored for %s. Use 'thronewatch run' to take one.\n", target.Key)
		return thronewatch.Errorf(thronewatch.ENOTFOUND, "no snapshot stored for %s", target.Key)
	}

	if c.JSON {
		return writeJSON(deps.Stdout, snapshot)
	}

	fmt.Fprintf(deps.Stdout, "%s  %d items  (taken %s)\n", snapshot.TargetKey, len(snapshot.Items), snapshot.TakenAt.UTC().Format(time.RFC3339))
	for _, item := range snapshot.Items {
		fmt.Fprintln(deps.Stdout, formatItem(item))
	}
	return nil
}

// formatItem formats an item as an indented listing line.
func formatItem(item *thronewatch.Item) string {
	line := fmt.Sprintf("  %s  %s  %s", item.Name, thronewatch.FormatPrice(item.PriceCents, item.Currency), item.ProductURL)
	if item.Available != nil && !*item.Available {
		line += "  (unavailable)"
	}
	return line
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
