package source

import (
	"context"
	"io"
	"math"
	"math/rand"

	"github.com/banshee-data/rotation.report/internal/rotation"
)

// OrbitConfig describes a synthetic object circling a pivot.
type OrbitConfig struct {
	Pivot          rotation.Point2D
	Radius         float64 // Orbit radius in pixels
	PeriodFrames   float64 // Frames per full revolution
	PhaseDegrees   float64 // Starting angle in image space, from +X
	FrameRate      float64 // Frames per second for elapsed time
	Frames         int     // Total frames to emit
	PointsPerFrame int     // Candidate points clustered around the object
	Jitter         float64 // Std dev of per-point noise in pixels
	OutlierRate    float64 // Probability of one uniform outlier per frame
	DropoutRate    float64 // Probability of an empty (no motion) frame
	Width, Height  float64 // Extent for outlier placement
	Seed           int64
}

// DefaultOrbitConfig returns a 640x480 scene with a 2 second revolution.
func DefaultOrbitConfig() OrbitConfig {
	return OrbitConfig{
		Pivot:          rotation.Point2D{X: 320, Y: 240},
		Radius:         120,
		PeriodFrames:   60,
		PhaseDegrees:   45,
		FrameRate:      30,
		Frames:         600,
		PointsPerFrame: 12,
		Jitter:         2,
		Width:          640,
		Height:         480,
		Seed:           1,
	}
}

// Orbit generates frames from an OrbitConfig. Frame indices start at 1.
type Orbit struct {
	cfg  OrbitConfig
	rng  *rand.Rand
	next int
}

// NewOrbit returns a deterministic orbit source for cfg.
func NewOrbit(cfg OrbitConfig) *Orbit {
	if cfg.PointsPerFrame <= 0 {
		cfg.PointsPerFrame = 1
	}
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = 30
	}
	return &Orbit{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed)), next: 1}
}

// Position returns the noise-free object position for frame index i.
func (o *Orbit) Position(i int) rotation.Point2D {
	phase := o.cfg.PhaseDegrees*math.Pi/180 + 2*math.Pi*float64(i-1)/o.cfg.PeriodFrames
	return rotation.Point2D{
		X: o.cfg.Pivot.X + o.cfg.Radius*math.Cos(phase),
		Y: o.cfg.Pivot.Y + o.cfg.Radius*math.Sin(phase),
	}
}

// Next returns the next synthetic frame.
func (o *Orbit) Next(ctx context.Context) (rotation.Frame, error) {
	if err := ctx.Err(); err != nil {
		return rotation.Frame{}, err
	}
	if o.next > o.cfg.Frames {
		return rotation.Frame{}, io.EOF
	}
	i := o.next
	o.next++

	f := rotation.Frame{Index: i, ElapsedSeconds: float64(i) / o.cfg.FrameRate}
	if o.cfg.DropoutRate > 0 && o.rng.Float64() < o.cfg.DropoutRate {
		return f, nil
	}

	center := o.Position(i)
	f.Points = make([]rotation.Point2D, 0, o.cfg.PointsPerFrame+1)
	for k := 0; k < o.cfg.PointsPerFrame; k++ {
		p := center
		if o.cfg.Jitter > 0 {
			p.X += o.rng.NormFloat64() * o.cfg.Jitter
			p.Y += o.rng.NormFloat64() * o.cfg.Jitter
		}
		f.Points = append(f.Points, rotation.Point2D{X: math.Round(p.X), Y: math.Round(p.Y)})
	}
	if o.cfg.OutlierRate > 0 && o.rng.Float64() < o.cfg.OutlierRate {
		f.Points = append(f.Points, rotation.Point2D{
			X: math.Round(o.rng.Float64() * o.cfg.Width),
			Y: math.Round(o.rng.Float64() * o.cfg.Height),
		})
	}
	return f, nil
}
