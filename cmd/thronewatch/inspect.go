package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/thronewatch"
)

// Run executes the inspect command.
func (c *InspectCmd) Run(deps *Dependencies) error {
	html, err := os.ReadFile(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	ext, err := deps.Extractor.Extract(&thronewatch.Page{URL: c.URL, HTML: string(html)})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", thronewatch.ErrorMessage(err))
		return err
	}

	if c.JSON {
		return writeJSON(deps.Stdout, ext)
	}

	fmt.Fprintf(deps.Stdout, "%d items via %s\n", len(ext.Items), ext.Strategy)
	for _, item := range ext.Items {
		fmt.Fprintf(deps.Stdout, "%s\n    id: %s\n", formatItem(item), item.ID)
	}
	return nil
}
