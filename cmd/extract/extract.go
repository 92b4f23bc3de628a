// Package extract handles the statement extraction command
package extract

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"fmoura/extrato-csv/cmd/root"
	"fmoura/extrato-csv/internal/amountutils"
	"fmoura/extrato-csv/internal/bankprofile"
	"fmoura/extrato-csv/internal/export"
	"fmoura/extrato-csv/internal/logging"
	"fmoura/extrato-csv/internal/models"
	"fmoura/extrato-csv/internal/orchestrator"
	"fmoura/extrato-csv/internal/resultcache"
)

var (
	ocrFlag           bool
	fillRangeFlag     bool
	minConfidenceFlag string
)

// Cmd represents the extract command
var Cmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract transactions from a statement PDF",
	Long: `Extract runs the statement through the text extraction chain, recognizes
transactions under the selected bank profile and writes transactions.csv
and summary.csv to the output directory.`,
	Run: extractFunc,
}

func init() {
	Cmd.Flags().BoolVar(&ocrFlag, "ocr", false, "Enable OCR for scanned pages (requires pdftoppm and tesseract)")
	Cmd.Flags().BoolVar(&fillRangeFlag, "fill-range", false, "Fill the summary with zero-valued days over the full date range")
	Cmd.Flags().StringVar(&minConfidenceFlag, "min-confidence", "", "Drop transactions below this confidence (high|low)")
}

func extractFunc(cmd *cobra.Command, args []string) {
	logger := root.GetLogger()

	if root.SharedFlags.Input == "" {
		logger.Fatal("Input file is required (-i)")
	}
	if root.SharedFlags.Bank == "" {
		logger.Fatal("Bank identifier is required (-b), see 'extrato-csv banks'")
	}
	outDir := root.SharedFlags.Output
	if outDir == "" {
		outDir = "."
	}

	minConfidence, ok := parseConfidence(minConfidenceFlag)
	if !ok {
		logger.Fatalf("Invalid --min-confidence %q (must be high or low)", minConfidenceFlag)
	}

	data, err := os.ReadFile(root.SharedFlags.Input)
	if err != nil {
		logger.Fatalf("Failed to read input file: %v", err)
	}

	registry := bankprofile.NewRegistry()
	if path := root.Cfg.Banks.OverridesFile; path != "" {
		if err := registry.LoadOverrides(path); err != nil {
			logger.Fatalf("Failed to load bank profile overrides: %v", err)
		}
	}

	var cache *resultcache.Cache
	if root.Cfg.Cache.Enabled {
		cache = resultcache.New(logger, time.Duration(root.Cfg.Cache.TTLHours)*time.Hour)
	}

	orch := orchestrator.New(logger, registry, cache)
	orch.SetWorkers(root.Cfg.Extraction.Workers)
	orch.SetPageTimeout(time.Duration(root.Cfg.Extraction.PageTimeoutSeconds) * time.Second)

	opts := orchestrator.Options{
		EnableOCR:     ocrFlag || root.Cfg.Extraction.OCREnabled,
		OCRLang:       root.Cfg.Extraction.OCRLanguage,
		FillDateRange: fillRangeFlag,
		MinConfidence: minConfidence,
	}

	logger.Info("Starting extraction",
		logging.Field{Key: logging.FieldInputFile, Value: root.SharedFlags.Input},
		logging.Field{Key: logging.FieldBank, Value: root.SharedFlags.Bank})

	result, err := orch.Run(context.Background(), data, root.SharedFlags.Bank, opts)
	if err != nil {
		logger.Fatalf("Extraction failed: %v", err)
	}

	txFile := filepath.Join(outDir, "transactions.csv")
	if err := export.WriteTransactionsCSV(result.Transactions, txFile); err != nil {
		logger.Fatalf("Failed to write transactions: %v", err)
	}
	summaryFile := filepath.Join(outDir, "summary.csv")
	if err := export.WriteSummariesCSV(result.Summaries, summaryFile); err != nil {
		logger.Fatalf("Failed to write summaries: %v", err)
	}

	unreadable := 0
	for _, ps := range result.PageStatuses {
		if ps.Status == models.PageUnreadable {
			unreadable++
		}
	}
	if unreadable > 0 {
		logger.Warn("Some pages were unreadable",
			logging.Field{Key: logging.FieldCount, Value: unreadable})
	}

	logger.Info("Extraction completed",
		logging.Field{Key: logging.FieldRunID, Value: result.RunID},
		logging.Field{Key: logging.FieldCount, Value: len(result.Transactions)},
		logging.Field{Key: "final_balance", Value: amountutils.FormatBRL(result.Statistics.FinalBalance)},
		logging.Field{Key: logging.FieldOutputFile, Value: txFile})
}

func parseConfidence(s string) (models.Confidence, bool) {
	switch s {
	case "":
		return "", true
	case string(models.ConfidenceHigh):
		return models.ConfidenceHigh, true
	case string(models.ConfidenceLow):
		return models.ConfidenceLow, true
	}
	return "", false
}
