// Package extractor implements the pluggable page-text extraction strategies,
// ordered by reliability and cost: embedded text layer first, layout-aware
// re-extraction second, optical recognition last. Strategies never mutate the
// document they read.
package extractor

import (
	"context"

	"fmoura/extrato-csv/internal/bankprofile"
	"fmoura/extrato-csv/internal/document"
	"fmoura/extrato-csv/internal/models"
	"fmoura/extrato-csv/internal/textutils"
)

// TextBlock is one positioned text run from a layout-aware extraction.
type TextBlock struct {
	X    float64
	Y    float64
	Text string
}

// Result is the outcome of one strategy on one page.
type Result struct {
	Text   string
	Blocks []TextBlock
	Method models.ExtractionMethod
}

// Strategy turns a document page into raw text.
type Strategy interface {
	// Method identifies the strategy in page status reports.
	Method() models.ExtractionMethod
	// Available reports whether the strategy can run at all in this
	// environment. Unavailable strategies are skipped, not failed.
	Available() bool
	// Extract produces the page's text. An empty Result.Text with nil error
	// means the strategy found nothing to extract (e.g. no text layer).
	Extract(ctx context.Context, page document.Page) (Result, error)
}

// Checker decides whether extracted text is plausible statement content,
// preventing binary noise from a broken text layer being accepted as a
// false success.
type Checker struct {
	registry   *bankprofile.Registry
	minChars   int
	minDensity float64
}

// NewChecker builds the plausibility check against the given profile
// registry. Text passes if it contains a date recognizable by ANY bank's
// patterns, or is long and printable enough to be worth recognizing.
func NewChecker(registry *bankprofile.Registry) *Checker {
	return &Checker{
		registry:   registry,
		minChars:   50,
		minDensity: 0.6,
	}
}

// Plausible reports whether the text should be accepted from a strategy.
func (c *Checker) Plausible(text string) bool {
	if len(text) == 0 {
		return false
	}
	if c.registry.AnyDateMatch(text) {
		return true
	}
	return len(text) >= c.minChars && textutils.PrintableDensity(text) >= c.minDensity
}

// DefaultChain returns the strategies in fixed priority order. The optical
// strategy is included only when enabled by configuration; its external
// tools being absent is handled by Available, not by an error.
func DefaultChain(ocrEnabled bool, ocrLang string) []Strategy {
	chain := []Strategy{
		&PlainTextStrategy{},
		&LayoutStrategy{},
	}
	if ocrEnabled {
		chain = append(chain, NewOCRStrategy(ocrLang))
	}
	return chain
}
