package goquery

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/fwojciec/thronewatch"
	"github.com/shopspring/decimal"
)

// PriceUnit says how a numeric price value is expressed.
type PriceUnit int

const (
	// MajorUnits values are whole currency units: 12.5 means 12.50.
	MajorUnits PriceUnit = iota
	// MinorUnits values are already in cents: 1250 means 12.50.
	MinorUnits
	// AutoUnits treats integer literals as minor units and any number written
	// with a fraction or exponent ("25.0", "2.5e1") as major units.
	AutoUnits
)

// PriceKey names a price field and the unit of its numeric values.
// String values are always parsed as display text.
type PriceKey struct {
	Path string
	Unit PriceUnit
}

// FieldMap lists, per item field, the key paths tried in order when mapping
// a structured-data object to an item. Paths are dot-separated and may index
// into arrays ("offers.0.price").
type FieldMap struct {
	ID        []string
	Name      []string
	Price     []PriceKey
	Currency  []string
	URL       []string
	Image     []string
	Available []string
}

// NextDataFields maps entries of a Next.js page-data blob.
var NextDataFields = FieldMap{
	ID:   []string{"id", "uuid", "itemId", "item_id", "_id"},
	Name: []string{"name", "title", "productName", "product.name"},
	Price: []PriceKey{
		{Path: "priceCents", Unit: MinorUnits},
		{Path: "price_cents", Unit: MinorUnits},
		{Path: "price.amount", Unit: AutoUnits},
		{Path: "price.value", Unit: AutoUnits},
		{Path: "price", Unit: AutoUnits},
		{Path: "amount", Unit: AutoUnits},
	},
	Currency:  []string{"currency", "currencyCode", "currency_code", "price.currency", "price.currencyCode", "priceCurrency"},
	URL:       []string{"url", "productUrl", "product_url", "link", "url_path", "href", "product.url"},
	Image:     []string{"image", "imageUrl", "image_url", "imageURL", "thumbnail", "images", "product.image"},
	Available: []string{"available", "isAvailable", "inStock", "in_stock", "availability"},
}

// JSONLDFields maps schema.org Product entries of an ItemList.
var JSONLDFields = FieldMap{
	ID:   []string{"sku", "productID"},
	Name: []string{"name", "title"},
	Price: []PriceKey{
		{Path: "offers.price", Unit: MajorUnits},
		{Path: "offers.lowPrice", Unit: MajorUnits},
		{Path: "offers.0.price", Unit: MajorUnits},
		{Path: "offers.0.lowPrice", Unit: MajorUnits},
	},
	Currency:  []string{"offers.priceCurrency", "offers.0.priceCurrency"},
	URL:       []string{"url", "@id", "offers.url", "offers.0.url"},
	Image:     []string{"image", "thumbnailUrl"},
	Available: []string{"offers.availability", "offers.0.availability"},
}

// mapItem builds an item from a structured-data object. The product URL is
// returned as found; it is resolved and normalized by the extractor.
func mapItem(obj map[string]any, fields FieldMap) *thronewatch.Item {
	item := &thronewatch.Item{
		NativeID:   firstString(obj, fields.ID),
		Name:       cleanText(firstString(obj, fields.Name)),
		Currency:   strings.ToUpper(firstString(obj, fields.Currency)),
		ProductURL: firstString(obj, fields.URL),
		ImageURL:   firstImage(obj, fields.Image),
	}

	for _, key := range fields.Price {
		v, ok := lookup(obj, key.Path)
		if !ok {
			continue
		}
		if p, ok := priceValue(v, key.Unit, item.Currency); ok {
			cents := p.Cents
			item.PriceCents = &cents
			if item.Currency == "" {
				item.Currency = p.Currency
			}
			break
		}
	}

	for _, path := range fields.Available {
		v, ok := lookup(obj, path)
		if !ok {
			continue
		}
		if available, ok := availabilityValue(v); ok {
			item.Available = &available
			break
		}
	}

	return item
}

// lookup walks a dot-separated path through nested objects and arrays.
func lookup(v any, path string) (any, bool) {
	for _, part := range strings.Split(path, ".") {
		switch node := v.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return nil, false
			}
			v = next
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			v = node[i]
		default:
			return nil, false
		}
	}
	return v, v != nil
}

func firstString(obj map[string]any, paths []string) string {
	for _, path := range paths {
		v, ok := lookup(obj, path)
		if !ok {
			continue
		}
		if s := scalarString(v); s != "" {
			return s
		}
	}
	return ""
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	}
	return ""
}

// firstImage accepts a URL string, a list whose first entry is usable, or an
// object carrying url or src.
func firstImage(obj map[string]any, paths []string) string {
	for _, path := range paths {
		v, ok := lookup(obj, path)
		if !ok {
			continue
		}
		if s := imageValue(v); s != "" {
			return s
		}
	}
	return ""
}

func imageValue(v any) string {
	switch img := v.(type) {
	case string:
		return strings.TrimSpace(img)
	case []any:
		if len(img) > 0 {
			return imageValue(img[0])
		}
	case map[string]any:
		for _, key := range []string{"url", "src", "contentUrl"} {
			if s, ok := img[key].(string); ok && s != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// priceValue interprets a structured price. Numbers are scaled according to
// unit; strings are parsed as display text, with currency used when the text
// carries no marker of its own.
func priceValue(v any, unit PriceUnit, currency string) (Price, bool) {
	switch p := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(p.String())
		if err != nil {
			return Price{}, false
		}
		if unit == AutoUnits {
			unit = MajorUnits
			if isIntegerLiteral(p.String()) {
				unit = MinorUnits
			}
		}
		return numericPrice(d, unit, currency)
	case string:
		if parsed, ok := ParsePrice(p); ok {
			return parsed, true
		}
		d, ok := parseAmount(p)
		if !ok {
			return Price{}, false
		}
		cents, ok := toMinorUnits(d, currency)
		if !ok {
			return Price{}, false
		}
		return Price{Cents: cents, Currency: currency}, true
	}
	return Price{}, false
}

func numericPrice(d decimal.Decimal, unit PriceUnit, currency string) (Price, bool) {
	var cents int64
	var ok bool
	if unit == MinorUnits {
		cents, ok = roundToInt64(d)
	} else {
		cents, ok = toMinorUnits(d, currency)
	}
	if !ok {
		return Price{}, false
	}
	return Price{Cents: cents, Currency: currency}, true
}

// isIntegerLiteral reports whether a JSON number was written without a
// fraction or exponent.
func isIntegerLiteral(n string) bool {
	return !strings.ContainsAny(n, ".eE")
}

// availabilityValue reads booleans, 0/1 numbers, and schema.org availability
// strings such as "https://schema.org/InStock".
func availabilityValue(v any) (bool, bool) {
	switch a := v.(type) {
	case bool:
		return a, true
	case json.Number:
		return a.String() != "0", true
	case string:
		s := strings.ToLower(strings.TrimSpace(a))
		if i := strings.LastIndex(s, "/"); i >= 0 {
			s = s[i+1:]
		}
		switch s {
		case "true", "yes", "instock", "in_stock", "available", "limitedavailability", "onlineonly", "preorder", "presale":
			return true, true
		case "false", "no", "outofstock", "out_of_stock", "soldout", "sold_out", "unavailable", "discontinued":
			return false, true
		}
	}
	return false, false
}

// sortedKeys returns the keys of m in lexical order so that searches over
// decoded JSON are deterministic.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func decodeJSON(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
