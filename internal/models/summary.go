package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySummary aggregates one calendar day's recognized transactions.
// It is always derived fresh from the full transaction set, never mutated
// incrementally, so NetBalance = TotalCredit - TotalDebit holds by
// construction.
type DailySummary struct {
	Date             time.Time       `json:"date"`
	TotalCredit      decimal.Decimal `json:"total_credit"`
	TotalDebit       decimal.Decimal `json:"total_debit"`
	NetBalance       decimal.Decimal `json:"net_balance"`
	TransactionCount int             `json:"transaction_count"`
}

// MonthlySummary aggregates a calendar month the same way DailySummary
// aggregates a day.
type MonthlySummary struct {
	Year             int             `json:"year"`
	Month            time.Month      `json:"month"`
	TotalCredit      decimal.Decimal `json:"total_credit"`
	TotalDebit       decimal.Decimal `json:"total_debit"`
	NetBalance       decimal.Decimal `json:"net_balance"`
	TransactionCount int             `json:"transaction_count"`
}

// Statistics summarizes a whole transaction set.
type Statistics struct {
	TotalCredit      decimal.Decimal `json:"total_credit"`
	TotalDebit       decimal.Decimal `json:"total_debit"`
	FinalBalance     decimal.Decimal `json:"final_balance"`
	LargestCredit    decimal.Decimal `json:"largest_credit"`
	LargestDebit     decimal.Decimal `json:"largest_debit"`
	TransactionCount int             `json:"transaction_count"`
}
