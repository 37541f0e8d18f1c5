package rotation

import (
	"fmt"
)

// Frame is one unit of input from the candidate point source.
type Frame struct {
	Index          int       `json:"frame"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	Points         []Point2D `json:"points"`
}

// Outcome classifies what a frame did to the tracking state.
type Outcome int

const (
	// OutcomeNoMotion: empty candidate set. State untouched, no sample.
	OutcomeNoMotion Outcome = iota
	// OutcomePivotSeeded: the raw centroid became the pivot. No sample.
	OutcomePivotSeeded
	// OutcomeTracked: a fresh centroid was smoothed into the tracked point.
	OutcomeTracked
	// OutcomeReused: every candidate failed the outlier gate, so the previous
	// tracked point stands for this frame. A sample is still recorded.
	OutcomeReused
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoMotion:
		return "no_motion"
	case OutcomePivotSeeded:
		return "pivot_seeded"
	case OutcomeTracked:
		return "tracked"
	case OutcomeReused:
		return "reused"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// FrameResult describes the effect of one ProcessFrame call.
type FrameResult struct {
	FrameIndex     int     `json:"frame_index"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Outcome        Outcome `json:"outcome"`
	CandidateCount int     `json:"candidate_count"`
	FilteredCount  int     `json:"filtered_count"`
	Raw            Point2D `json:"raw"`
	Tracked        Point2D `json:"tracked"`
	Bearing        float64 `json:"bearing"`
	RotationCount  int     `json:"rotation_count"`
	Rotated        bool    `json:"rotated"`
	Sample         *Sample `json:"sample,omitempty"`
}

// HasTrackedPoint reports whether the frame produced a tracked location.
func (r FrameResult) HasTrackedPoint() bool {
	return r.Outcome == OutcomeTracked || r.Outcome == OutcomeReused
}

// Observer is notified after every frame that produced a tracked point.
// Observers must not block; the pipeline calls them synchronously.
type Observer interface {
	ObserveFrame(FrameResult)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(FrameResult)

// ObserveFrame calls f(r).
func (f ObserverFunc) ObserveFrame(r FrameResult) { f(r) }

// Pipeline runs the per-frame tracking stages against one TrackingState.
// It is not safe for concurrent use; frames must be processed in order.
type Pipeline struct {
	cfg       Config
	state     *TrackingState
	observers []Observer
}

// NewPipeline validates cfg and returns a pipeline with fresh state.
func NewPipeline(cfg Config, observers ...Observer) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Pivot != nil {
		p := *cfg.Pivot
		cfg.Pivot = &p
	}
	return &Pipeline{
		cfg:       cfg,
		state:     newTrackingState(cfg.Pivot),
		observers: observers,
	}, nil
}

// AddObserver registers o for subsequent frames.
func (p *Pipeline) AddObserver(o Observer) {
	p.observers = append(p.observers, o)
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// State exposes the tracking state for read-only inspection.
func (p *Pipeline) State() *TrackingState {
	return p.state
}

// Samples returns a copy of the trajectory recorded so far.
func (p *Pipeline) Samples() []Sample {
	return p.state.Samples()
}

// ProcessFrame runs one frame through the pipeline.
func (p *Pipeline) ProcessFrame(f Frame) (FrameResult, error) {
	res := FrameResult{
		FrameIndex:     f.Index,
		ElapsedSeconds: f.ElapsedSeconds,
		CandidateCount: len(f.Points),
	}
	s := p.state

	if len(f.Points) == 0 {
		res.Outcome = OutcomeNoMotion
		res.RotationCount = s.rotationCount
		tracef("frame %d: no motion", f.Index)
		return res, nil
	}

	var located Point2D
	if s.smoothed == nil {
		// No tracked point yet: the whole candidate set seeds the centroid.
		raw, err := Centroid(f.Points)
		if err != nil {
			return res, fmt.Errorf("frame %d: %w", f.Index, err)
		}
		res.Raw = raw
		res.FilteredCount = len(f.Points)

		if !s.hasPivot {
			s.pivot = raw
			s.hasPivot = true
			res.Outcome = OutcomePivotSeeded
			res.RotationCount = s.rotationCount
			diagf("frame %d: pivot seeded from centroid (%.2f, %.2f)", f.Index, raw.X, raw.Y)
			return res, nil
		}

		located = Smooth(raw, nil, p.cfg.Alpha)
		res.Outcome = OutcomeTracked
	} else {
		filtered := FilterOutliers(f.Points, *s.smoothed, p.cfg.MaxOutlierDistance)
		res.FilteredCount = len(filtered)
		if len(filtered) == 0 {
			located = *s.smoothed
			res.Outcome = OutcomeReused
			tracef("frame %d: all %d candidates beyond %.2f, reusing tracked point", f.Index, len(f.Points), p.cfg.MaxOutlierDistance)
		} else {
			raw, err := Centroid(filtered)
			if err != nil {
				return res, fmt.Errorf("frame %d: %w", f.Index, err)
			}
			res.Raw = raw
			located = Smooth(raw, s.smoothed, p.cfg.Alpha)
			res.Outcome = OutcomeTracked
		}
	}
	s.smoothed = &located

	captured, err := s.updateBearing()
	if err != nil {
		opsf("frame %d: bearing: %v", f.Index, err)
		return res, fmt.Errorf("frame %d: %w", f.Index, err)
	}
	if captured {
		diagf("frame %d: reference bearing %.2f°", f.Index, *s.referenceBearing)
	}

	rotated := s.detectRotation(!captured)
	if rotated {
		diagf("frame %d: rotation %d at bearing %.2f° (reference %.2f°)",
			f.Index, s.rotationCount, *s.currentBearing, *s.referenceBearing)
	}

	sample := s.recorder.Record(f.Index, located, *s.currentBearing, s.rotationCount, f.ElapsedSeconds)

	res.Tracked = located
	res.Bearing = *s.currentBearing
	res.RotationCount = s.rotationCount
	res.Rotated = rotated
	res.Sample = &sample
	tracef("frame %d: %s tracked=(%.2f, %.2f) bearing=%.2f rotations=%d",
		f.Index, res.Outcome, located.X, located.Y, res.Bearing, res.RotationCount)

	for _, o := range p.observers {
		o.ObserveFrame(res)
	}
	return res, nil
}
