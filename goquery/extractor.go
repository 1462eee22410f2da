// Package goquery extracts wishlist items from HTML using goquery.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/thronewatch"
)

// Strategy finds candidate items in a parsed page. It returns nil when the
// page does not contain what the strategy looks for. Product and image URLs
// may be relative; the extractor resolves them.
type Strategy interface {
	Name() string
	Extract(doc *goquery.Document, base *url.URL) []*thronewatch.Item
}

// DefaultStrategies returns the strategies in the order they are tried:
// embedded page data, then linked data, then rendered cards.
func DefaultStrategies() []Strategy {
	return []Strategy{
		NewNextDataStrategy(),
		NewJSONLDStrategy(),
		NewCardStrategy(),
	}
}

// Ensure Extractor implements thronewatch.Extractor.
var _ thronewatch.Extractor = (*Extractor)(nil)

// Extractor runs strategies in order and keeps the first non-empty result.
type Extractor struct {
	strategies []Strategy
}

// NewExtractor creates an Extractor. With no strategies it uses
// DefaultStrategies.
func NewExtractor(strategies ...Strategy) *Extractor {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Extractor{strategies: strategies}
}

// Extract parses the page once and returns the items of the first strategy
// that yields any usable item. Items get absolute normalized product URLs and
// stable IDs; duplicates by URL or ID are dropped, keeping page order.
// It returns EEXTRACT when no strategy yields an item.
func (e *Extractor) Extract(page *thronewatch.Page) (*thronewatch.Extraction, error) {
	if page == nil {
		return nil, thronewatch.Errorf(thronewatch.EINVALID, "page required")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, thronewatch.Errorf(thronewatch.EEXTRACT, "parse HTML of %s: %v", page.URL, err)
	}

	base, err := url.Parse(page.URL)
	if err != nil {
		base = nil
	}

	for _, s := range e.strategies {
		items := finalize(s.Extract(doc, base), base)
		if len(items) > 0 {
			return &thronewatch.Extraction{Strategy: s.Name(), Items: items}, nil
		}
	}

	return nil, thronewatch.Errorf(thronewatch.EEXTRACT, "no wishlist items found on %s", page.URL)
}

func finalize(raw []*thronewatch.Item, base *url.URL) []*thronewatch.Item {
	var items []*thronewatch.Item
	seenURL := make(map[string]bool)
	seenID := make(map[string]bool)

	for _, item := range raw {
		if item == nil {
			continue
		}

		href, ok := resolveLink(base, item.ProductURL)
		if !ok {
			continue
		}
		normalized, err := thronewatch.NormalizeURL(href)
		if err != nil || seenURL[normalized] {
			continue
		}
		seenURL[normalized] = true

		item.ProductURL = normalized
		if img, ok := resolveLink(base, item.ImageURL); ok {
			item.ImageURL = img
		} else {
			item.ImageURL = ""
		}
		item.Name = cleanText(item.Name)
		item.Currency = strings.ToUpper(strings.TrimSpace(item.Currency))
		if item.PriceCents == nil {
			item.Currency = ""
		}

		item.ID = thronewatch.ResolveID(item)
		if seenID[item.ID] {
			continue
		}
		seenID[item.ID] = true

		items = append(items, item)
	}

	return items
}
