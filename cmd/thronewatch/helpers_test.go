package main_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/thronewatch"
	main "github.com/fwojciec/thronewatch/cmd/thronewatch"
	"github.com/fwojciec/thronewatch/mock"
	"github.com/fwojciec/thronewatch/monitor"
)

const (
	aliceKey = "https://throne.com/u/alice/wishlist"
	bobKey   = "https://throne.com/u/bob/wishlist"
)

func cents(v int64) *int64 {
	return &v
}

func item(id string, price int64) *thronewatch.Item {
	return &thronewatch.Item{
		ID:         id,
		Name:       "Item " + id,
		PriceCents: cents(price),
		Currency:   "USD",
		ProductURL: "https://shop.example.com/" + id,
	}
}

// newDeps returns Dependencies writing to fresh buffers.
func newDeps() (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: stdout,
		Stderr: stderr,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, stdout, stderr
}

// memorySnapshots returns a SnapshotService mock backed by a map.
func memorySnapshots(initial ...*thronewatch.Snapshot) *mock.SnapshotService {
	var mu sync.Mutex
	stored := make(map[string]*thronewatch.Snapshot)
	for _, s := range initial {
		stored[s.TargetKey] = s
	}

	return &mock.SnapshotService{
		UpdateSnapshotFn: func(_ context.Context, key string, fn func(prev *thronewatch.Snapshot) (*thronewatch.Snapshot, error)) error {
			mu.Lock()
			defer mu.Unlock()
			prev, ok := stored[key]
			if !ok {
				prev = &thronewatch.Snapshot{TargetKey: key}
			}
			next, err := fn(prev)
			if err != nil {
				return err
			}
			if next != nil {
				stored[key] = next
			}
			return nil
		},
	}
}

// newRunner returns a Runner that serves items per URL and fails for URLs
// without an entry.
func newRunner(snapshots thronewatch.SnapshotService, notifier thronewatch.Notifier, pages map[string]func() []*thronewatch.Item) *monitor.Runner {
	return &monitor.Runner{
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				if _, ok := pages[url]; !ok {
					return "", errors.New("connection refused")
				}
				return "<html></html>", nil
			},
		},
		Extractor: &mock.Extractor{
			ExtractFn: func(page *thronewatch.Page) (*thronewatch.Extraction, error) {
				return &thronewatch.Extraction{Strategy: "next-data", Items: pages[page.URL]()}, nil
			},
		},
		Snapshots:   snapshots,
		Notifier:    notifier,
		RetryDelays: []time.Duration{},
	}
}
