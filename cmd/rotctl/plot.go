package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/banshee-data/rotation.report/internal/charts"
	"github.com/banshee-data/rotation.report/internal/config"
	"github.com/banshee-data/rotation.report/internal/rotation"
	"github.com/banshee-data/rotation.report/internal/security"
	"github.com/spf13/cobra"
)

func newPlotCmd() *cobra.Command {
	var outDir string
	var html bool
	cmd := &cobra.Command{
		Use:   "plot <run-id>",
		Short: "Render bearing and trajectory charts for a run",
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
			pivot := pivotFromParams(run.ParamsJSON)

			paths, err := charts.SavePNGs(outDir, run.RunID, samples, pivot)
			if err != nil {
				return err
			}
			if html {
				path, err := security.ResolveOutputPath(outDir, security.SanitizeFilename(run.RunID)+"-charts.html")
				if err != nil {
					return err
				}
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				if err := charts.RenderHTML(f, run.Source, samples, pivot); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				paths = append(paths, path)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", strings.Join(paths, ", "))
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "output directory")
	cmd.Flags().BoolVar(&html, "html", false, "also write an interactive chart page")
	return cmd
}

// pivotFromParams recovers the configured pivot from a run's stored
// parameters. Runs that seeded their pivot from the first frame have none.
func pivotFromParams(params string) *rotation.Point2D {
	var cfg config.RunConfig
	if err := json.Unmarshal([]byte(params), &cfg); err != nil || cfg.Pivot == nil {
		return nil
	}
	return &rotation.Point2D{X: cfg.Pivot.X, Y: cfg.Pivot.Y}
}
