package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/banshee-data/rotation.report/internal/units"
	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	var limit int
	var asJSON bool
	var rateUnits string
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !units.IsValid(rateUnits) {
				return fmt.Errorf("invalid --units %q (want %s)", rateUnits, units.GetValidUnitsString())
			}
			store, err := openDB()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN ID\tSTARTED\tFRAMES\tROTATIONS\tRATE\tSTATUS\tSOURCE")
			for _, r := range runs {
				elapsed, err := store.ElapsedSeconds(r.RunID)
				if err != nil {
					return err
				}
				rate := units.ConvertRate(units.RevolutionsPerSecond(r.Rotations, elapsed), rateUnits)
				status := "running"
				if r.FinishedAt != nil {
					status = "complete"
					if r.Stopped {
						status = "stopped"
					}
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.2f %s\t%s\t%s\n",
					r.RunID, r.StartedAt.UTC().Format(time.RFC3339), r.FramesRead, r.Rotations,
					rate, units.Label(rateUnits), status, r.Source)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print runs as JSON")
	cmd.Flags().StringVar(&rateUnits, "units", units.RPM, "rotation rate units: "+units.GetValidUnitsString())
	return cmd
}
