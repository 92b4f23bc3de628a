// Package parsererror defines the typed errors surfaced by the extraction
// pipeline. Input errors abort a run before any page work; page-level errors
// are recoverable and reported per page.
package parsererror

import (
	"fmt"
	"strings"
)

// UnknownBankError is returned when the caller supplies a bank identifier
// that has no registered profile. Bank selection is explicit, so this is an
// input error, never a fallback to the generic profile.
type UnknownBankError struct {
	Identifier string
	Available  []string
}

func (e *UnknownBankError) Error() string {
	return fmt.Sprintf("unknown bank identifier '%s': available banks are %s",
		e.Identifier, strings.Join(e.Available, ", "))
}

// InvalidDocumentError is returned when the input bytes are empty or cannot
// be opened as a document at all.
type InvalidDocumentError struct {
	Reason string
	Err    error
}

func (e *InvalidDocumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid document: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid document: %s", e.Reason)
}

func (e *InvalidDocumentError) Unwrap() error {
	return e.Err
}

// NoExtractableTextError is returned when every page of a document resists
// every extraction strategy. A document where only some pages fail is a
// partial success and does not produce this error.
type NoExtractableTextError struct {
	Pages int
}

func (e *NoExtractableTextError) Error() string {
	return fmt.Sprintf("no extractable text: all %d page(s) unreadable by every strategy", e.Pages)
}

// PageExtractionError represents a recoverable failure of one extraction
// strategy on one page. The orchestrator logs it and tries the next strategy.
type PageExtractionError struct {
	Page   int
	Method string
	Err    error
}

func (e *PageExtractionError) Error() string {
	return fmt.Sprintf("page %d: %s extraction failed: %v", e.Page, e.Method, e.Err)
}

func (e *PageExtractionError) Unwrap() error {
	return e.Err
}

// AggregationError indicates that daily summaries did not reconcile with
// the signed transaction total. Aggregation is a pure function, so this
// should never occur; if it does, the run is failed rather than returning
// inconsistent totals.
type AggregationError struct {
	Expected string
	Actual   string
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregation totals do not reconcile: expected net %s, got %s",
		e.Expected, e.Actual)
}
