// Package fs provides file-based debugging aids.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/thronewatch"
)

// maxNameLen bounds the file name derived from a URL.
const maxNameLen = 150

// Ensure Dumper implements thronewatch.PageDumper at compile time.
var _ thronewatch.PageDumper = (*Dumper)(nil)

// Dumper saves raw page HTML so that extraction failures can be inspected
// later. Each URL maps to one file, which is replaced on the next dump.
type Dumper struct {
	dir string
}

// NewDumper creates a Dumper writing into dir. The directory is created on
// first use.
func NewDumper(dir string) *Dumper {
	return &Dumper{dir: dir}
}

// Dump writes html to the file for url and returns its path. The file is
// written to a temporary name first and renamed into place.
func (d *Dumper) Dump(ctx context.Context, url, html string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", fmt.Errorf("create dump dir: %w", err)
	}

	path := filepath.Join(d.dir, URLToFilename(url))
	tmp, err := os.CreateTemp(d.dir, ".dump-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(html); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}

	return path, nil
}

// URLToFilename converts a URL into a flat, filesystem-safe file name.
// Example: https://throne.com/u/alice/wishlist → throne.com_u_alice_wishlist.html
func URLToFilename(rawURL string) string {
	name := rawURL
	if i := strings.Index(name, "://"); i >= 0 {
		name = name[i+3:]
	}

	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		}
		return '_'
	}, name)
	name = strings.Trim(name, "_.")

	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	if name == "" {
		name = "page"
	}
	return name + ".html"
}
