package main

import (
	"fmt"

	"github.com/fwojciec/thronewatch"
)

// Run executes the reset command. The next run of the target is treated
// as its first.
func (c *ResetCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return thronewatch.Errorf(thronewatch.EINVALID, "use --force to confirm deletion")
	}

	target, err := thronewatch.ParseTarget(c.Target)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", thronewatch.ErrorMessage(err))
		return err
	}

	if err := deps.Snapshots.DeleteSnapshot(deps.Ctx, target.Key); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", thronewatch.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Reset snapshot for %s\n", target.Key)
	return nil
}
