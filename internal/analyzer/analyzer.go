// Package analyzer aggregates recognized transactions into daily and
// monthly summaries and run statistics. All functions are pure: they never
// mutate their inputs and the same input always yields the same output.
package analyzer

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fmoura/extrato-csv/internal/models"
	"fmoura/extrato-csv/internal/textutils"
)

// Summarize groups transactions by calendar day and returns one summary per
// day that has at least one transaction, in ascending date order.
func Summarize(transactions []models.Transaction) []models.DailySummary {
	byDay := make(map[time.Time]*models.DailySummary)
	for _, tx := range transactions {
		day := tx.Day()
		s, ok := byDay[day]
		if !ok {
			s = &models.DailySummary{Date: day}
			byDay[day] = s
		}
		accumulate(s, tx)
	}

	summaries := make([]models.DailySummary, 0, len(byDay))
	for _, s := range byDay {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Date.Before(summaries[j].Date)
	})
	return summaries
}

// SummarizeRange is Summarize with the gaps filled: every day between the
// earliest and latest transaction dates gets a summary, days without
// activity carrying zero totals. Returns nil for no transactions.
func SummarizeRange(transactions []models.Transaction) []models.DailySummary {
	sparse := Summarize(transactions)
	if len(sparse) == 0 {
		return nil
	}

	byDay := make(map[time.Time]models.DailySummary, len(sparse))
	for _, s := range sparse {
		byDay[s.Date] = s
	}

	first := sparse[0].Date
	last := sparse[len(sparse)-1].Date

	var filled []models.DailySummary
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if s, ok := byDay[day]; ok {
			filled = append(filled, s)
			continue
		}
		filled = append(filled, models.DailySummary{
			Date:        day,
			TotalCredit: decimal.Zero,
			TotalDebit:  decimal.Zero,
			NetBalance:  decimal.Zero,
		})
	}
	return filled
}

// SummarizeMonthly groups transactions by calendar month, ascending.
func SummarizeMonthly(transactions []models.Transaction) []models.MonthlySummary {
	type key struct {
		year  int
		month time.Month
	}
	byMonth := make(map[key]*models.MonthlySummary)
	for _, tx := range transactions {
		k := key{tx.Date.Year(), tx.Date.Month()}
		s, ok := byMonth[k]
		if !ok {
			s = &models.MonthlySummary{Year: k.year, Month: k.month}
			byMonth[k] = s
		}
		if tx.IsCredit() {
			s.TotalCredit = s.TotalCredit.Add(tx.Amount)
		} else {
			s.TotalDebit = s.TotalDebit.Add(tx.Amount)
		}
		s.NetBalance = s.TotalCredit.Sub(s.TotalDebit)
		s.TransactionCount++
	}

	summaries := make([]models.MonthlySummary, 0, len(byMonth))
	for _, s := range byMonth {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Year != summaries[j].Year {
			return summaries[i].Year < summaries[j].Year
		}
		return summaries[i].Month < summaries[j].Month
	})
	return summaries
}

// Statistics computes run-level totals over all transactions.
func Statistics(transactions []models.Transaction) models.Statistics {
	stats := models.Statistics{TransactionCount: len(transactions)}
	for _, tx := range transactions {
		if tx.IsCredit() {
			stats.TotalCredit = stats.TotalCredit.Add(tx.Amount)
			if tx.Amount.GreaterThan(stats.LargestCredit) {
				stats.LargestCredit = tx.Amount
			}
		} else {
			stats.TotalDebit = stats.TotalDebit.Add(tx.Amount)
			if tx.Amount.GreaterThan(stats.LargestDebit) {
				stats.LargestDebit = tx.Amount
			}
		}
	}
	stats.FinalBalance = stats.TotalCredit.Sub(stats.TotalDebit)
	return stats
}

// TopTransactions returns the n largest transactions by amount, descending.
// Ties keep their original relative order.
func TopTransactions(transactions []models.Transaction, n int) []models.Transaction {
	if n <= 0 || len(transactions) == 0 {
		return nil
	}
	sorted := make([]models.Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount.GreaterThan(sorted[j].Amount)
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// Search returns transactions whose description contains the query,
// ignoring case and accents.
func Search(transactions []models.Transaction, query string) []models.Transaction {
	folded := textutils.Fold(strings.TrimSpace(query))
	if folded == "" {
		return nil
	}
	var matched []models.Transaction
	for _, tx := range transactions {
		if strings.Contains(textutils.Fold(tx.Description), folded) {
			matched = append(matched, tx)
		}
	}
	return matched
}

// Reconcile checks that the summed summaries match the raw transaction
// totals. A mismatch means aggregation dropped or double counted something.
func Reconcile(transactions []models.Transaction, summaries []models.DailySummary) (expected, actual decimal.Decimal, ok bool) {
	for _, tx := range transactions {
		expected = expected.Add(tx.SignedAmount())
	}
	for _, s := range summaries {
		actual = actual.Add(s.NetBalance)
	}
	return expected, actual, expected.Equal(actual)
}

func accumulate(s *models.DailySummary, tx models.Transaction) {
	if tx.IsCredit() {
		s.TotalCredit = s.TotalCredit.Add(tx.Amount)
	} else {
		s.TotalDebit = s.TotalDebit.Add(tx.Amount)
	}
	s.NetBalance = s.TotalCredit.Sub(s.TotalDebit)
	s.TransactionCount++
}
