package rotation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(p Point2D) *Point2D { return &p }

func newTestPipeline(t *testing.T, cfg Config) *Pipeline {
	t.Helper()
	p, err := NewPipeline(cfg)
	require.NoError(t, err)
	return p
}

// orbitPoint places a point on a circle around pivot; phaseDeg is measured
// in image space from the +X axis.
func orbitPoint(pivot Point2D, radius, phaseDeg float64) Point2D {
	rad := phaseDeg * math.Pi / 180
	return Point2D{X: pivot.X + radius*math.Cos(rad), Y: pivot.Y + radius*math.Sin(rad)}
}

func TestNewPipeline_Validation(t *testing.T) {
	pivot := ptr(Point2D{X: 1, Y: 1})
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"alpha zero", Config{Alpha: 0, MaxOutlierDistance: 10, Pivot: pivot}, ErrInvalidConfiguration},
		{"alpha above one", Config{Alpha: 1.01, MaxOutlierDistance: 10, Pivot: pivot}, ErrInvalidConfiguration},
		{"alpha NaN", Config{Alpha: math.NaN(), MaxOutlierDistance: 10, Pivot: pivot}, ErrInvalidConfiguration},
		{"negative distance", Config{Alpha: 0.5, MaxOutlierDistance: -1, Pivot: pivot}, ErrInvalidConfiguration},
		{"no pivot no fallback", Config{Alpha: 0.5, MaxOutlierDistance: 10}, ErrMissingPivot},
		{"valid", Config{Alpha: 1, MaxOutlierDistance: 0, Pivot: pivot}, nil},
		{"valid with fallback", Config{Alpha: 0.2, MaxOutlierDistance: 20, PivotFallback: true}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPipeline(tt.cfg)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewPipeline_CopiesPivot(t *testing.T) {
	pivot := Point2D{X: 3, Y: 4}
	p := newTestPipeline(t, Config{Alpha: 1, MaxOutlierDistance: 10, Pivot: &pivot})
	pivot.X = 99

	got, ok := p.State().Pivot()
	require.True(t, ok)
	assert.Equal(t, Point2D{X: 3, Y: 4}, got)
}

// Stationary point: the bearing sits on the reference every frame, so the
// detector fires as soon as the cooldown allows and then every 32 frames.
func TestPipeline_StationaryPointCountsEveryCooldown(t *testing.T) {
	p := newTestPipeline(t, Config{Alpha: 1, MaxOutlierDistance: 1000, Pivot: ptr(Point2D{})})

	var fired []int
	for i := 1; i <= 100; i++ {
		res, err := p.ProcessFrame(Frame{Index: i, ElapsedSeconds: float64(i) / 30, Points: []Point2D{{X: 10, Y: 0}}})
		require.NoError(t, err)
		assert.InDelta(t, 180.0, res.Bearing, 1e-9)
		if res.Rotated {
			fired = append(fired, i)
		}
		if i == 50 {
			assert.Equal(t, 1, p.State().RotationCount())
		}
	}

	ref, ok := p.State().ReferenceBearing()
	require.True(t, ok)
	assert.InDelta(t, 180.0, ref, 1e-9)
	assert.Equal(t, []int{33, 65, 97}, fired)
	assert.Equal(t, 3, p.State().RotationCount())
}

func TestPipeline_OrbitCountsOncePerRevolution(t *testing.T) {
	pivot := Point2D{X: 100, Y: 100}

	t.Run("alpha one fires on exact return", func(t *testing.T) {
		p := newTestPipeline(t, Config{Alpha: 1, MaxOutlierDistance: 1000, Pivot: &pivot})
		var fired []int
		for i := 1; i <= 301; i++ {
			pt := orbitPoint(pivot, 40, 45+float64(i-1)*6)
			res, err := p.ProcessFrame(Frame{Index: i, ElapsedSeconds: float64(i) / 30, Points: []Point2D{pt}})
			require.NoError(t, err)
			if res.Rotated {
				fired = append(fired, i)
			}
		}
		assert.Equal(t, []int{61, 121, 181, 241, 301}, fired)
	})

	t.Run("smoothed lag fires near return", func(t *testing.T) {
		p := newTestPipeline(t, Config{Alpha: 0.5, MaxOutlierDistance: 1000, Pivot: &pivot})
		ref := math.NaN()
		var fired []int
		for i := 1; i <= 310; i++ {
			pt := orbitPoint(pivot, 40, 45+float64(i-1)*6)
			res, err := p.ProcessFrame(Frame{Index: i, ElapsedSeconds: float64(i) / 30, Points: []Point2D{pt}})
			require.NoError(t, err)
			if i == 1 {
				ref = res.Bearing
			}
			if res.Rotated {
				fired = append(fired, i)
				assert.Less(t, math.Abs(res.Bearing-ref), AngleTolerance)
			}
		}
		require.Len(t, fired, 5)
		for k, f := range fired {
			period := 60*(k+1) + 1
			assert.InDelta(t, period, f, 3, "rotation %d fired at frame %d", k+1, f)
		}
	})
}

func TestPipeline_NoMotionGap(t *testing.T) {
	pivot := Point2D{X: 100, Y: 100}
	p := newTestPipeline(t, Config{Alpha: 0.3, MaxOutlierDistance: 50, Pivot: &pivot})

	var after9 Snapshot
	for i := 1; i <= 30; i++ {
		var points []Point2D
		if i < 10 || i > 20 {
			points = []Point2D{orbitPoint(pivot, 40, float64(i)*3)}
		}
		res, err := p.ProcessFrame(Frame{Index: i, ElapsedSeconds: float64(i) / 30, Points: points})
		require.NoError(t, err)

		if i >= 10 && i <= 20 {
			assert.Equal(t, OutcomeNoMotion, res.Outcome)
			assert.Nil(t, res.Sample)
			if diff := cmp.Diff(after9, p.State().Snapshot()); diff != "" {
				t.Fatalf("state changed on no-motion frame %d (-want +got):\n%s", i, diff)
			}
		}
		if i == 9 {
			after9 = p.State().Snapshot()
		}
	}

	samples := p.Samples()
	assert.Len(t, samples, 19)
	for _, s := range samples {
		if s.FrameIndex >= 10 && s.FrameIndex <= 20 {
			t.Errorf("unexpected sample for no-motion frame %d", s.FrameIndex)
		}
	}
	assert.Equal(t, 21, samples[9].FrameIndex)
}

func TestPipeline_NoMotionLeavesCounterAlone(t *testing.T) {
	p := newTestPipeline(t, Config{Alpha: 1, MaxOutlierDistance: 1000, Pivot: ptr(Point2D{})})
	_, err := p.ProcessFrame(Frame{Index: 1, Points: []Point2D{{X: 10, Y: 0}}})
	require.NoError(t, err)
	before := p.State().Snapshot()

	for i := 2; i <= 100; i++ {
		res, err := p.ProcessFrame(Frame{Index: i, ElapsedSeconds: float64(i)})
		require.NoError(t, err)
		assert.Equal(t, OutcomeNoMotion, res.Outcome)
	}
	assert.Equal(t, before, p.State().Snapshot())
	assert.Equal(t, 1, p.State().FramesSinceLastRotation())
}

func TestPipeline_OutlierGateReusesTrackedPoint(t *testing.T) {
	p := newTestPipeline(t, Config{Alpha: 0.5, MaxOutlierDistance: 5, Pivot: ptr(Point2D{})})

	_, err := p.ProcessFrame(Frame{Index: 1, ElapsedSeconds: 0.03, Points: []Point2D{{X: 10, Y: 0}, {X: 12, Y: 0}}})
	require.NoError(t, err)
	first, ok := p.State().SmoothedLocation()
	require.True(t, ok)
	assert.Equal(t, Point2D{X: 11, Y: 0}, first)

	res, err := p.ProcessFrame(Frame{Index: 2, ElapsedSeconds: 0.07, Points: []Point2D{{X: 80, Y: 80}}})
	require.NoError(t, err)
	assert.Equal(t, OutcomeReused, res.Outcome)
	assert.Equal(t, 0, res.FilteredCount)
	assert.Equal(t, first, res.Tracked)
	require.NotNil(t, res.Sample)

	second, _ := p.State().SmoothedLocation()
	assert.Equal(t, first, second)
	assert.Len(t, p.Samples(), 2)
	assert.Equal(t, 2, p.State().FramesSinceLastRotation())
}

func TestPipeline_OutlierGateDropsFarPoints(t *testing.T) {
	p := newTestPipeline(t, Config{Alpha: 1, MaxOutlierDistance: 5, Pivot: ptr(Point2D{})})
	_, err := p.ProcessFrame(Frame{Index: 1, Points: []Point2D{{X: 10, Y: 0}}})
	require.NoError(t, err)

	res, err := p.ProcessFrame(Frame{Index: 2, Points: []Point2D{{X: 11, Y: 0}, {X: 13, Y: 0}, {X: 500, Y: 500}}})
	require.NoError(t, err)
	assert.Equal(t, OutcomeTracked, res.Outcome)
	assert.Equal(t, 3, res.CandidateCount)
	assert.Equal(t, 2, res.FilteredCount)
	assert.Equal(t, Point2D{X: 12, Y: 0}, res.Tracked)
}

func TestPipeline_FirstFrameIsNotFiltered(t *testing.T) {
	p := newTestPipeline(t, Config{Alpha: 0.5, MaxOutlierDistance: 0, Pivot: ptr(Point2D{})})
	res, err := p.ProcessFrame(Frame{Index: 1, Points: []Point2D{{X: 0, Y: 10}, {X: 20, Y: 10}}})
	require.NoError(t, err)
	assert.Equal(t, OutcomeTracked, res.Outcome)
	assert.Equal(t, Point2D{X: 10, Y: 10}, res.Tracked)
	assert.Equal(t, 2, res.FilteredCount)
}

func TestPipeline_PivotFallback(t *testing.T) {
	p := newTestPipeline(t, Config{Alpha: 1, MaxOutlierDistance: 100, PivotFallback: true})

	res, err := p.ProcessFrame(Frame{Index: 1, Points: []Point2D{{X: 40, Y: 40}, {X: 60, Y: 60}}})
	require.NoError(t, err)
	assert.Equal(t, OutcomePivotSeeded, res.Outcome)
	assert.Nil(t, res.Sample)

	pivot, ok := p.State().Pivot()
	require.True(t, ok)
	assert.Equal(t, Point2D{X: 50, Y: 50}, pivot)
	_, tracked := p.State().SmoothedLocation()
	assert.False(t, tracked)
	assert.Equal(t, 0, p.State().FramesSinceLastRotation())

	res, err = p.ProcessFrame(Frame{Index: 2, Points: []Point2D{{X: 60, Y: 50}}})
	require.NoError(t, err)
	assert.Equal(t, OutcomeTracked, res.Outcome)
	assert.InDelta(t, 180.0, res.Bearing, 1e-9)
	assert.Len(t, p.Samples(), 1)

	pivot, _ = p.State().Pivot()
	assert.Equal(t, Point2D{X: 50, Y: 50}, pivot)
}

func TestPipeline_ReferenceBearingSetOnce(t *testing.T) {
	pivot := Point2D{X: 0, Y: 0}
	p := newTestPipeline(t, Config{Alpha: 1, MaxOutlierDistance: 1000, Pivot: &pivot})

	_, err := p.ProcessFrame(Frame{Index: 1, Points: []Point2D{{X: 0, Y: 10}}})
	require.NoError(t, err)
	for i := 2; i < 20; i++ {
		_, err := p.ProcessFrame(Frame{Index: i, Points: []Point2D{orbitPoint(pivot, 10, float64(i)*10)}})
		require.NoError(t, err)
	}
	ref, ok := p.State().ReferenceBearing()
	require.True(t, ok)
	assert.InDelta(t, -90.0, ref, 1e-9)

	cur, ok := p.State().CurrentBearing()
	require.True(t, ok)
	assert.NotEqual(t, ref, cur)
}

func TestPipeline_SampleRounding(t *testing.T) {
	p := newTestPipeline(t, Config{Alpha: 1, MaxOutlierDistance: 100, Pivot: ptr(Point2D{})})
	res, err := p.ProcessFrame(Frame{Index: 7, ElapsedSeconds: 1.23456, Points: []Point2D{{X: 3, Y: 7}}})
	require.NoError(t, err)

	want := Sample{
		FrameIndex:     7,
		X:              3,
		Y:              7,
		BearingDegrees: math.Round(Bearing(Point2D{}, Point2D{X: 3, Y: 7})*100) / 100,
		RotationCount:  0,
		ElapsedSeconds: 1.23,
	}
	if diff := cmp.Diff(want, *res.Sample); diff != "" {
		t.Errorf("sample mismatch (-want +got):\n%s", diff)
	}
	assert.NotEqual(t, res.Bearing, res.Sample.BearingDegrees)
}

func TestPipeline_SamplesAreCopies(t *testing.T) {
	p := newTestPipeline(t, Config{Alpha: 1, MaxOutlierDistance: 100, Pivot: ptr(Point2D{})})
	_, err := p.ProcessFrame(Frame{Index: 1, Points: []Point2D{{X: 3, Y: 7}}})
	require.NoError(t, err)

	samples := p.Samples()
	samples[0].RotationCount = 42
	assert.Equal(t, 0, p.Samples()[0].RotationCount)
}

func TestPipeline_ObserversSeeTrackedFramesOnly(t *testing.T) {
	var seen []int
	obs := ObserverFunc(func(r FrameResult) {
		require.True(t, r.HasTrackedPoint())
		seen = append(seen, r.FrameIndex)
	})
	p, err := NewPipeline(Config{Alpha: 1, MaxOutlierDistance: 1, PivotFallback: true}, obs)
	require.NoError(t, err)

	frames := []Frame{
		{Index: 1, Points: []Point2D{{X: 5, Y: 5}}},  // pivot seed
		{Index: 2},                                  // no motion
		{Index: 3, Points: []Point2D{{X: 10, Y: 5}}}, // tracked
		{Index: 4, Points: []Point2D{{X: 90, Y: 5}}}, // reused
	}
	for _, f := range frames {
		_, err := p.ProcessFrame(f)
		require.NoError(t, err)
	}
	assert.Equal(t, []int{3, 4}, seen)
}

func TestPipeline_NoisyOrbitInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	pivot := Point2D{X: 320, Y: 240}
	p := newTestPipeline(t, Config{Alpha: 0.4, MaxOutlierDistance: 30, Pivot: &pivot})

	lastCount := 0
	lastFireSample := -1
	for i := 1; i <= 2000; i++ {
		var points []Point2D
		if rng.Float64() > 0.1 {
			center := orbitPoint(pivot, 100, 30+float64(i)*4.5)
			for k := 0; k < 15; k++ {
				points = append(points, Point2D{X: center.X + rng.NormFloat64()*3, Y: center.Y + rng.NormFloat64()*3})
			}
			if rng.Float64() < 0.2 {
				points = append(points, Point2D{X: rng.Float64() * 640, Y: rng.Float64() * 480})
			}
		}
		res, err := p.ProcessFrame(Frame{Index: i, ElapsedSeconds: float64(i) / 30, Points: points})
		require.NoError(t, err)

		count := p.State().RotationCount()
		require.GreaterOrEqual(t, count, lastCount)
		require.LessOrEqual(t, count-lastCount, 1)
		if res.Rotated {
			n := len(p.Samples()) - 1
			if lastFireSample >= 0 {
				require.Greater(t, n-lastFireSample, CooldownFrames, "rotation at frame %d fired inside cooldown", i)
			}
			lastFireSample = n
		}
		lastCount = count
	}
	assert.Greater(t, lastCount, 0)

	samples := p.Samples()
	for i := 1; i < len(samples); i++ {
		assert.Less(t, samples[i-1].FrameIndex, samples[i].FrameIndex)
		assert.GreaterOrEqual(t, samples[i].RotationCount, samples[i-1].RotationCount)
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "no_motion", OutcomeNoMotion.String())
	assert.Equal(t, "pivot_seeded", OutcomePivotSeeded.String())
	assert.Equal(t, "tracked", OutcomeTracked.String())
	assert.Equal(t, "reused", OutcomeReused.String())
	assert.Equal(t, "outcome(9)", Outcome(9).String())
}
