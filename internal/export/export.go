// Package export writes extraction results to CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"fmoura/extrato-csv/internal/amountutils"
	"fmoura/extrato-csv/internal/dateutils"
	"fmoura/extrato-csv/internal/logging"
	"fmoura/extrato-csv/internal/models"
)

var log = logging.GetLogger()

// Delimiter is the CSV output delimiter, configurable via config.
var Delimiter rune = ','

// SetDelimiter changes the delimiter used for all subsequent CSV output.
func SetDelimiter(delim rune) {
	Delimiter = delim
	gocsv.TagSeparator = fmt.Sprintf("%c", delim)
}

// SetLogger replaces the package logger with a configured one.
func SetLogger(logger logging.Logger) {
	if logger == nil {
		return
	}
	log = logger
}

type transactionRow struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
	Direction   string `csv:"direction"`
	Page        int    `csv:"page"`
	Confidence  string `csv:"confidence"`
}

type summaryRow struct {
	Date             string `csv:"date"`
	TotalCredit      string `csv:"total_credit"`
	TotalDebit       string `csv:"total_debit"`
	NetBalance       string `csv:"net_balance"`
	TransactionCount int    `csv:"transaction_count"`
}

// WriteTransactionsCSV writes recognized transactions to csvFile, creating
// parent directories as needed. Dates use DD/MM/YYYY and amounts Brazilian
// formatting; a transaction with an unresolved year gets an empty date.
// A nil or empty slice writes the header row only, so a run that recognized
// nothing still produces a well-formed file.
func WriteTransactionsCSV(transactions []models.Transaction, csvFile string) error {
	log.Info("Writing transactions to CSV file",
		logging.Field{Key: logging.FieldOutputFile, Value: csvFile},
		logging.Field{Key: logging.FieldCount, Value: len(transactions)})

	rows := make([]transactionRow, 0, len(transactions))
	for _, tx := range transactions {
		date := dateutils.FormatBR(tx.Date)
		if tx.Date.Year() == models.UnknownYear {
			date = ""
		}
		rows = append(rows, transactionRow{
			Date:        date,
			Description: tx.Description,
			Amount:      amountutils.FormatBRL(tx.Amount),
			Direction:   string(tx.Direction),
			Page:        tx.Page,
			Confidence:  string(tx.Confidence),
		})
	}
	return writeCSV(rows, csvFile)
}

// WriteSummariesCSV writes daily summaries to csvFile. Nil is treated as
// empty, producing a header-only file.
func WriteSummariesCSV(summaries []models.DailySummary, csvFile string) error {
	log.Info("Writing summaries to CSV file",
		logging.Field{Key: logging.FieldOutputFile, Value: csvFile},
		logging.Field{Key: logging.FieldCount, Value: len(summaries)})

	rows := make([]summaryRow, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, summaryRow{
			Date:             dateutils.FormatBR(s.Date),
			TotalCredit:      amountutils.FormatBRL(s.TotalCredit),
			TotalDebit:       amountutils.FormatBRL(s.TotalDebit),
			NetBalance:       amountutils.FormatBRL(s.NetBalance),
			TransactionCount: s.TransactionCount,
		})
	}
	return writeCSV(rows, csvFile)
}

func writeCSV(rows interface{}, csvFile string) error {
	dir := filepath.Dir(csvFile)
	if err := os.MkdirAll(dir, 0750); err != nil {
		log.WithError(err).Error("Failed to create output directory")
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.Create(csvFile)
	if err != nil {
		log.WithError(err).Error("Failed to create CSV file")
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	csvWriter := csv.NewWriter(file)
	csvWriter.Comma = Delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		log.WithError(err).Error("Failed to write CSV data")
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}
