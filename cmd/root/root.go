// Package root contains the root command for the application
package root

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"fmoura/extrato-csv/internal/config"
	"fmoura/extrato-csv/internal/export"
	"fmoura/extrato-csv/internal/logging"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input  string
	Output string
	Bank   string
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Cfg is the resolved application configuration, populated before any
	// subcommand runs.
	Cfg *config.Config

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "extrato-csv",
		Short: "A CLI tool to extract transactions from Brazilian bank statement PDFs.",
		Long: `extrato-csv extracts dated credit/debit transactions from bank statement
PDFs (digital or scanned) and writes them, with daily summaries, to CSV.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to extrato-csv!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg, err := config.InitializeConfig()
			if err != nil {
				Log.Fatalf("Failed to load configuration: %v", err)
			}
			Cfg = cfg

			Log = config.ConfigureLoggingFromConfig(cfg)
			export.SetLogger(logging.NewLogrusAdapterFromLogger(Log))

			if delim := cfg.CSV.Delimiter; delim != "" {
				export.SetDelimiter([]rune(delim)[0])
			}
		},
	}

	// Common flags accessible to all commands
	SharedFlags = CommonFlags{}
)

// GetLogger returns the configured shared logger behind the common interface.
func GetLogger() logging.Logger {
	return logging.NewLogrusAdapterFromLogger(Log)
}

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input PDF file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output directory")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Bank, "bank", "b", "", "Bank profile identifier (see 'banks')")
}
