package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/thronewatch"
)

// NextDataSelectors locate the embedded Next.js page-data blob.
var NextDataSelectors = []string{
	"script#__NEXT_DATA__",
	"script[type='application/json'][data-next-data]",
}

// NextDataItemPaths are known locations of the wishlist items array inside
// the page data. A "*" segment matches every element of an array or object.
var NextDataItemPaths = []string{
	"props.pageProps.wishlist.items",
	"props.pageProps.wishlistItems",
	"props.pageProps.items",
	"props.pageProps.user.wishlist.items",
	"props.pageProps.creator.wishlist.items",
	"props.pageProps.profile.wishlist.items",
	"props.pageProps.dehydratedState.queries.*.state.data.items",
	"props.pageProps.dehydratedState.queries.*.state.data.wishlist.items",
}

// NextDataStrategy reads items from the page-data blob. When none of the
// known paths match it searches the whole blob for an "items" array of
// objects that look like products.
type NextDataStrategy struct {
	Selectors []string
	ItemPaths []string
	Fields    FieldMap
}

// NewNextDataStrategy returns a strategy configured with the default tables.
func NewNextDataStrategy() *NextDataStrategy {
	return &NextDataStrategy{
		Selectors: NextDataSelectors,
		ItemPaths: NextDataItemPaths,
		Fields:    NextDataFields,
	}
}

func (s *NextDataStrategy) Name() string {
	return "next-data"
}

func (s *NextDataStrategy) Extract(doc *goquery.Document, _ *url.URL) []*thronewatch.Item {
	for _, sel := range s.Selectors {
		var items []*thronewatch.Item
		doc.Find(sel).EachWithBreak(func(_ int, script *goquery.Selection) bool {
			data, err := decodeJSON(strings.TrimSpace(script.Text()))
			if err != nil {
				return true
			}
			items = s.itemsFrom(data)
			return len(items) == 0
		})
		if len(items) > 0 {
			return items
		}
	}
	return nil
}

func (s *NextDataStrategy) itemsFrom(data any) []*thronewatch.Item {
	entries := s.findEntries(data)
	if len(entries) == 0 {
		return nil
	}

	items := make([]*thronewatch.Item, 0, len(entries))
	for _, entry := range entries {
		items = append(items, mapItem(entry, s.Fields))
	}
	return items
}

func (s *NextDataStrategy) findEntries(data any) []map[string]any {
	for _, path := range s.ItemPaths {
		for _, v := range lookupWildcard(data, strings.Split(path, ".")) {
			if entries := s.productObjects(v); len(entries) > 0 {
				return entries
			}
		}
	}
	return s.searchItems(data)
}

// searchItems walks the blob depth-first, keys in lexical order, and returns
// the first "items" array holding product-like objects.
func (s *NextDataStrategy) searchItems(v any) []map[string]any {
	switch node := v.(type) {
	case map[string]any:
		if entries := s.productObjects(node["items"]); len(entries) > 0 {
			return entries
		}
		for _, k := range sortedKeys(node) {
			if entries := s.searchItems(node[k]); len(entries) > 0 {
				return entries
			}
		}
	case []any:
		for _, child := range node {
			if entries := s.searchItems(child); len(entries) > 0 {
				return entries
			}
		}
	}
	return nil
}

// productObjects returns the objects of v when v is an array in which at
// least one object carries a name field.
func (s *NextDataStrategy) productObjects(v any) []map[string]any {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}

	var objs []map[string]any
	named := false
	for _, el := range arr {
		obj, ok := el.(map[string]any)
		if !ok {
			continue
		}
		objs = append(objs, obj)
		if firstString(obj, s.Fields.Name) != "" {
			named = true
		}
	}
	if !named {
		return nil
	}
	return objs
}

// lookupWildcard resolves a path in which "*" fans out over every child.
func lookupWildcard(v any, parts []string) []any {
	if len(parts) == 0 {
		return []any{v}
	}

	part, rest := parts[0], parts[1:]
	if part != "*" {
		next, ok := lookup(v, part)
		if !ok {
			return nil
		}
		return lookupWildcard(next, rest)
	}

	var out []any
	switch node := v.(type) {
	case map[string]any:
		for _, k := range sortedKeys(node) {
			out = append(out, lookupWildcard(node[k], rest)...)
		}
	case []any:
		for _, child := range node {
			out = append(out, lookupWildcard(child, rest)...)
		}
	}
	return out
}
