package thronewatch

// Page is a fetched wishlist page.
type Page struct {
	// URL is the address the page was fetched from. Relative links are
	// resolved against it.
	URL  string
	HTML string
}

// Extraction holds the items extracted from a page.
type Extraction struct {
	// Strategy names the extraction strategy that produced the items.
	Strategy string

	// Items are deduplicated, carry resolved IDs, and keep document order.
	Items []*Item
}

// Extractor turns a wishlist page into canonical items.
type Extractor interface {
	// Extract returns the items found on the page.
	// Returns EEXTRACT if no strategy finds any item. Items with missing
	// fields (price, image) are valid output, not errors.
	Extract(page *Page) (*Extraction, error)
}
