package extractor

import (
	"context"
	"fmt"
	"strings"

	"fmoura/extrato-csv/internal/document"
	"fmoura/extrato-csv/internal/models"
)

// PlainTextStrategy pulls the page's embedded text layer. It is the cheapest
// and most reliable strategy for digital statements, and returns empty text
// for scanned pages that have no text layer.
type PlainTextStrategy struct{}

// Method implements Strategy.
func (s *PlainTextStrategy) Method() models.ExtractionMethod {
	return models.MethodText
}

// Available implements Strategy. The text layer reader has no external
// dependencies.
func (s *PlainTextStrategy) Available() bool {
	return true
}

// Extract implements Strategy.
func (s *PlainTextStrategy) Extract(_ context.Context, page document.Page) (Result, error) {
	text, err := plainText(page)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Text:   strings.TrimSpace(text),
		Method: models.MethodText,
	}, nil
}

// plainText isolates the PDF library call behind a recover; malformed
// content streams can panic inside the parser.
func plainText(page document.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("text layer extraction panic: %v", r)
		}
	}()

	p := page.PDF()
	if p.V.IsNull() {
		return "", fmt.Errorf("page %d not present in document", page.Number)
	}
	return p.GetPlainText(nil)
}
