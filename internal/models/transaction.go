// Package models defines the core data types shared across the extraction
// pipeline: transactions, daily summaries, and per-page status reports.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction classifies a transaction as money in or money out.
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// Confidence records how a transaction's direction was resolved.
// High means a keyword match decided it; low means the sign fallback did.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// UnknownYear is the sentinel year used when a statement's year cannot be
// inferred from any header or full date in the document. Dates built with it
// remain mutually comparable within one document, which is all downstream
// aggregation needs.
const UnknownYear = 1

// Transaction is one recognized credit or debit record. Immutable after
// creation; the slice order is the original document position, not date order.
type Transaction struct {
	Date         time.Time       `json:"date"`
	YearInferred bool            `json:"year_inferred"`
	Amount       decimal.Decimal `json:"amount"`
	Direction    Direction       `json:"direction"`
	Description  string          `json:"description"`
	Page         int             `json:"page"`
	Confidence   Confidence      `json:"confidence"`
}

// IsCredit returns true if the transaction is a credit.
func (t Transaction) IsCredit() bool {
	return t.Direction == DirectionCredit
}

// IsDebit returns true if the transaction is a debit.
func (t Transaction) IsDebit() bool {
	return t.Direction == DirectionDebit
}

// SignedAmount returns the amount negated for debits, so that summing
// signed amounts over a transaction set yields the net balance.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.IsDebit() {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Day returns the transaction date truncated to its calendar day in UTC.
func (t Transaction) Day() time.Time {
	return time.Date(t.Date.Year(), t.Date.Month(), t.Date.Day(), 0, 0, 0, 0, time.UTC)
}
