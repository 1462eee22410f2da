package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/thronewatch"
)

// DefaultSampleSize is how many extracted items are logged at debug level.
const DefaultSampleSize = 3

// Ensure LoggingExtractor implements thronewatch.Extractor.
var _ thronewatch.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with logging. The first few items of
// every extraction are logged at debug level.
type LoggingExtractor struct {
	next       thronewatch.Extractor
	logger     *slog.Logger
	sampleSize int
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next thronewatch.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger, sampleSize: DefaultSampleSize}
}

// Extract logs the winning strategy and item count.
func (e *LoggingExtractor) Extract(page *thronewatch.Page) (ext *thronewatch.Extraction, err error) {
	begin := time.Now()
	ext, err = e.next.Extract(page)

	url := ""
	if page != nil {
		url = page.URL
	}
	if err != nil {
		e.logger.Warn("extract",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
		return ext, err
	}

	e.logger.Info("extract",
		"url", url,
		"strategy", ext.Strategy,
		"items", len(ext.Items),
		"duration", time.Since(begin),
	)
	for i, item := range ext.Items {
		if i >= e.sampleSize {
			break
		}
		e.logger.Debug("extracted item",
			"id", item.ID,
			"name", item.Name,
			"price", thronewatch.FormatPrice(item.PriceCents, item.Currency),
			"url", item.ProductURL,
		)
	}
	return ext, nil
}
