// Package thronewatch monitors public wishlists for changes. It fetches each
// configured wishlist page, extracts a normalized list of items, and compares
// it against the last stored snapshot to report additions, removals, and price
// changes.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, email/).
package thronewatch
