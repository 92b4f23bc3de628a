// Package banks lists the registered bank profiles
package banks

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fmoura/extrato-csv/cmd/root"
	"fmoura/extrato-csv/internal/bankprofile"
)

// Cmd represents the banks command
var Cmd = &cobra.Command{
	Use:   "banks",
	Short: "List registered bank profiles",
	Long:  `List the bank profile identifiers accepted by 'extract -b'.`,
	Run:   banksFunc,
}

func banksFunc(cmd *cobra.Command, args []string) {
	logger := root.GetLogger()

	registry := bankprofile.NewRegistry()
	if path := root.Cfg.Banks.OverridesFile; path != "" {
		if err := registry.LoadOverrides(path); err != nil {
			logger.Fatalf("Failed to load bank profile overrides: %v", err)
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCODE")
	for _, p := range registry.All() {
		code := p.Code
		if code == "" {
			code = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Name, code)
	}
	if err := w.Flush(); err != nil {
		logger.Fatalf("Failed to print bank table: %v", err)
	}
}
