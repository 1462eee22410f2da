package mock

import "github.com/fwojciec/thronewatch"

var _ thronewatch.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of thronewatch.Extractor.
type Extractor struct {
	ExtractFn func(page *thronewatch.Page) (*thronewatch.Extraction, error)
}

func (e *Extractor) Extract(page *thronewatch.Page) (*thronewatch.Extraction, error) {
	return e.ExtractFn(page)
}
