package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/thronewatch"
)

// JSONLDSelector locates embedded linked-data blocks.
const JSONLDSelector = "script[type='application/ld+json']"

// JSONLDListTypes are the schema.org types whose itemListElement holds items.
var JSONLDListTypes = []string{"ItemList", "Collection", "OfferCatalog"}

// JSONLDStrategy reads items from schema.org item lists.
type JSONLDStrategy struct {
	Selector  string
	ListTypes []string
	Fields    FieldMap
}

// NewJSONLDStrategy returns a strategy configured with the default tables.
func NewJSONLDStrategy() *JSONLDStrategy {
	return &JSONLDStrategy{
		Selector:  JSONLDSelector,
		ListTypes: JSONLDListTypes,
		Fields:    JSONLDFields,
	}
}

func (s *JSONLDStrategy) Name() string {
	return "json-ld"
}

func (s *JSONLDStrategy) Extract(doc *goquery.Document, _ *url.URL) []*thronewatch.Item {
	var items []*thronewatch.Item
	doc.Find(s.Selector).Each(func(_ int, script *goquery.Selection) {
		data, err := decodeJSON(strings.TrimSpace(script.Text()))
		if err != nil {
			return
		}
		for _, list := range s.lists(data) {
			items = append(items, s.listItems(list)...)
		}
	})
	return items
}

// lists collects item-list objects from a top-level value, an array of
// values, or an @graph container.
func (s *JSONLDStrategy) lists(v any) []map[string]any {
	switch node := v.(type) {
	case []any:
		var out []map[string]any
		for _, child := range node {
			out = append(out, s.lists(child)...)
		}
		return out
	case map[string]any:
		if graph, ok := node["@graph"]; ok {
			return s.lists(graph)
		}
		if s.isList(node) {
			return []map[string]any{node}
		}
	}
	return nil
}

func (s *JSONLDStrategy) isList(obj map[string]any) bool {
	if _, ok := obj["itemListElement"]; ok {
		return true
	}
	for _, t := range typeNames(obj["@type"]) {
		for _, want := range s.ListTypes {
			if t == want {
				return true
			}
		}
	}
	return false
}

func (s *JSONLDStrategy) listItems(list map[string]any) []*thronewatch.Item {
	elements, _ := list["itemListElement"].([]any)

	var items []*thronewatch.Item
	for _, el := range elements {
		obj, ok := el.(map[string]any)
		if !ok {
			continue
		}
		// ListItem wrappers carry the product under "item".
		inner, ok := obj["item"].(map[string]any)
		if !ok {
			items = append(items, mapItem(obj, s.Fields))
			continue
		}
		item := mapItem(inner, s.Fields)
		if item.ProductURL == "" {
			item.ProductURL = firstString(obj, s.Fields.URL)
		}
		items = append(items, item)
	}
	return items
}

func typeNames(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		var out []string
		for _, el := range t {
			if s, ok := el.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
