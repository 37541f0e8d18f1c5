package charts

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/banshee-data/rotation.report/internal/overlay"
	"github.com/banshee-data/rotation.report/internal/rotation"
	"github.com/banshee-data/rotation.report/internal/security"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// BearingPlot charts bearing against frame index.
func BearingPlot(title string, samples []rotation.Sample) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Angle to center (deg)"
	p.Y.Min = -180
	p.Y.Max = 180
	p.Add(plotter.NewGrid())

	for _, seg := range SplitSegments(samples) {
		pts := make(plotter.XYs, 0, len(seg.Samples))
		for _, s := range seg.Samples {
			pts = append(pts, plotter.XY{X: float64(s.FrameIndex), Y: s.BearingDegrees})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("bearing line for %s: %w", seg.Label(), err)
		}
		line.Color = overlay.ColorForRotations(seg.RotationCount)
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(seg.Label(), line)
	}
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// TrajectoryPlot charts the tracked point in image coordinates (y down)
// with the pivot, when known, drawn as a larger marker.
func TrajectoryPlot(title string, samples []rotation.Sample, pivot *rotation.Point2D) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (px)"
	p.Y.Label.Text = "y (px)"
	p.Y.Scale = plot.InvertedScale{Normalizer: p.Y.Scale}
	p.Add(plotter.NewGrid())

	for _, seg := range SplitSegments(samples) {
		pts := make(plotter.XYs, 0, len(seg.Samples))
		for _, s := range seg.Samples {
			pts = append(pts, plotter.XY{X: s.X, Y: s.Y})
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("trajectory for %s: %w", seg.Label(), err)
		}
		sc.GlyphStyle.Color = overlay.ColorForRotations(seg.RotationCount)
		sc.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(sc)
		p.Legend.Add(seg.Label(), sc)
	}

	if pivot != nil {
		sc, err := plotter.NewScatter(plotter.XYs{{X: pivot.X, Y: pivot.Y}})
		if err != nil {
			return nil, fmt.Errorf("pivot marker: %w", err)
		}
		sc.GlyphStyle.Color = color.Black
		sc.GlyphStyle.Radius = vg.Points(4)
		p.Add(sc)
		p.Legend.Add("pivot", sc)
	}
	p.Legend.Top = true
	p.Legend.Left = false
	return p, nil
}

// SavePNGs writes "<prefix>-bearing.png" and "<prefix>-trajectory.png" into
// dir and returns their paths.
func SavePNGs(dir, prefix string, samples []rotation.Sample, pivot *rotation.Point2D) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create plot directory: %w", err)
	}
	prefix = security.SanitizeFilename(prefix)

	bearing, err := BearingPlot(fmt.Sprintf("%s: angle to center", prefix), samples)
	if err != nil {
		return nil, err
	}
	trajectory, err := TrajectoryPlot(fmt.Sprintf("%s: tracked point", prefix), samples, pivot)
	if err != nil {
		return nil, err
	}

	outputs := []struct {
		name   string
		p      *plot.Plot
		width  vg.Length
		height vg.Length
	}{
		{prefix + "-bearing.png", bearing, 14 * vg.Inch, 6 * vg.Inch},
		{prefix + "-trajectory.png", trajectory, 8 * vg.Inch, 8 * vg.Inch},
	}

	var paths []string
	for _, o := range outputs {
		path, err := security.ResolveOutputPath(dir, o.name)
		if err != nil {
			return paths, err
		}
		if err := o.p.Save(o.width, o.height, path); err != nil {
			return paths, fmt.Errorf("failed to save %s: %w", filepath.Base(path), err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
