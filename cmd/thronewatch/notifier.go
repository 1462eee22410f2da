package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fwojciec/thronewatch"
)

var _ thronewatch.Notifier = (*WriterNotifier)(nil)

// WriterNotifier prints reports to W. It stands in for email when no SMTP
// server is configured.
type WriterNotifier struct {
	W  io.Writer
	mu sync.Mutex
}

// Notify writes the report subject and body.
func (n *WriterNotifier) Notify(ctx context.Context, targetKey string, report *thronewatch.ChangeReport) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := fmt.Fprintf(n.W, "%s\n%s\n\n", thronewatch.ReportSubject(targetKey, report), thronewatch.FormatReport(targetKey, report))
	return err
}
