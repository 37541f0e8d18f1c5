package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/rotation.report/internal/source"
	"github.com/spf13/cobra"
)

func newSynthCmd() *cobra.Command {
	cfg := source.DefaultOrbitConfig()
	var out string
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Generate a JSONL point file of an object orbiting a pivot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.PeriodFrames <= 0 {
				return fmt.Errorf("--period must be positive")
			}
			frames, err := source.Collect(context.Background(), source.NewOrbit(cfg))
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := source.WriteJSONL(w, frames); err != nil {
				return err
			}
			if out != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d frames to %s\n", len(frames), out)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&out, "out", "o", "-", "output file, or - for stdout")
	f.Float64Var(&cfg.Pivot.X, "pivot-x", cfg.Pivot.X, "pivot x in pixels")
	f.Float64Var(&cfg.Pivot.Y, "pivot-y", cfg.Pivot.Y, "pivot y in pixels")
	f.Float64Var(&cfg.Radius, "radius", cfg.Radius, "orbit radius in pixels")
	f.Float64Var(&cfg.PeriodFrames, "period", cfg.PeriodFrames, "frames per revolution")
	f.Float64Var(&cfg.PhaseDegrees, "phase", cfg.PhaseDegrees, "starting angle in degrees")
	f.Float64Var(&cfg.FrameRate, "fps", cfg.FrameRate, "frames per second")
	f.IntVar(&cfg.Frames, "frames", cfg.Frames, "number of frames")
	f.IntVar(&cfg.PointsPerFrame, "points", cfg.PointsPerFrame, "candidate points per frame")
	f.Float64Var(&cfg.Jitter, "jitter", cfg.Jitter, "per-point noise std dev in pixels")
	f.Float64Var(&cfg.OutlierRate, "outlier-rate", cfg.OutlierRate, "probability of an outlier point per frame")
	f.Float64Var(&cfg.DropoutRate, "dropout-rate", cfg.DropoutRate, "probability of an empty frame")
	f.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	return cmd
}
