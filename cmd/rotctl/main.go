package main

import (
	"fmt"
	"os"

	"github.com/banshee-data/rotation.report/internal/db"
	"github.com/banshee-data/rotation.report/internal/version"
	"github.com/spf13/cobra"
)

var dbPath string

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rotctl",
		Short: "Inspect and export rotation runs",
		Long: `rotctl works with the runs recorded by rotation-report -db.
It lists stored runs, exports their samples as CSV, renders charts and
generates synthetic point files for reproducible runs.`,
		Version:       version.String("rotctl"),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "rotation.db", "sqlite database with recorded runs")
	root.AddCommand(newRunsCmd(), newExportCmd(), newPlotCmd(), newSynthCmd())
	return root
}

func openDB() (*db.DB, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("database %s: %w", dbPath, err)
	}
	return db.NewDB(dbPath)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
