package mock

import (
	"context"

	"github.com/fwojciec/thronewatch"
)

var _ thronewatch.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of thronewatch.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ thronewatch.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of thronewatch.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}

var _ thronewatch.PageDumper = (*PageDumper)(nil)

// PageDumper is a mock implementation of thronewatch.PageDumper.
type PageDumper struct {
	DumpFn func(ctx context.Context, url, html string) (string, error)
}

func (d *PageDumper) Dump(ctx context.Context, url, html string) (string, error) {
	return d.DumpFn(ctx, url, html)
}
