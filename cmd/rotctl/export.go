package main

import (
	"fmt"

	"github.com/banshee-data/rotation.report/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var outDir, name string
	cmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Write a run's samples as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openDB()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(args[0])
			if err != nil {
				return err
			}
			samples, err := store.Samples(run.RunID)
			if err != nil {
				return err
			}
			if outDir == "-" {
				return export.WriteCSV(cmd.OutOrStdout(), samples)
			}
			path, err := export.SaveCSV(outDir, name, run.Source, samples)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d samples to %s\n", len(samples), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "output directory, or - for stdout")
	cmd.Flags().StringVar(&name, "name", "", "file name (default \"speed_data - <source>.csv\")")
	return cmd
}
