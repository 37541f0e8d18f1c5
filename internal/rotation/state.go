package rotation

// TrackingState is the mutable record carried across frames. It is owned by
// a single Pipeline and mutated only from ProcessFrame.
type TrackingState struct {
	pivot    Point2D
	hasPivot bool

	smoothed         *Point2D
	referenceBearing *float64
	currentBearing   *float64

	rotationCount           int
	framesSinceLastRotation int

	recorder Recorder
}

func newTrackingState(pivot *Point2D) *TrackingState {
	s := &TrackingState{}
	if pivot != nil {
		s.pivot = *pivot
		s.hasPivot = true
	}
	return s
}

// Pivot returns the pivot and whether it has been established.
func (s *TrackingState) Pivot() (Point2D, bool) {
	return s.pivot, s.hasPivot
}

// SmoothedLocation returns the tracked location, absent until the first
// tracked frame.
func (s *TrackingState) SmoothedLocation() (Point2D, bool) {
	if s.smoothed == nil {
		return Point2D{}, false
	}
	return *s.smoothed, true
}

// ReferenceBearing returns the set-once home bearing.
func (s *TrackingState) ReferenceBearing() (float64, bool) {
	if s.referenceBearing == nil {
		return 0, false
	}
	return *s.referenceBearing, true
}

// CurrentBearing returns the bearing computed on the latest tracked frame.
func (s *TrackingState) CurrentBearing() (float64, bool) {
	if s.currentBearing == nil {
		return 0, false
	}
	return *s.currentBearing, true
}

// RotationCount returns the number of rotations counted so far.
func (s *TrackingState) RotationCount() int {
	return s.rotationCount
}

// FramesSinceLastRotation returns the debounce counter.
func (s *TrackingState) FramesSinceLastRotation() int {
	return s.framesSinceLastRotation
}

// DetectorState reports whether the rotation detector could fire on the
// next matching frame.
func (s *TrackingState) DetectorState() DetectorState {
	if s.framesSinceLastRotation > CooldownFrames {
		return DetectorArmed
	}
	return DetectorCooldown
}

// Samples returns a copy of the recorded trajectory.
func (s *TrackingState) Samples() []Sample {
	return s.recorder.Samples()
}

// Snapshot is a JSON-friendly copy of TrackingState.
type Snapshot struct {
	Pivot                   *Point2D      `json:"pivot,omitempty"`
	SmoothedLocation        *Point2D      `json:"smoothed_location,omitempty"`
	ReferenceBearing        *float64      `json:"reference_bearing,omitempty"`
	CurrentBearing          *float64      `json:"current_bearing,omitempty"`
	RotationCount           int           `json:"rotation_count"`
	FramesSinceLastRotation int           `json:"frames_since_last_rotation"`
	DetectorState           DetectorState `json:"detector_state"`
	SampleCount             int           `json:"sample_count"`
}

// Snapshot copies the current state.
func (s *TrackingState) Snapshot() Snapshot {
	snap := Snapshot{
		RotationCount:           s.rotationCount,
		FramesSinceLastRotation: s.framesSinceLastRotation,
		DetectorState:           s.DetectorState(),
		SampleCount:             s.recorder.Len(),
	}
	if s.hasPivot {
		p := s.pivot
		snap.Pivot = &p
	}
	if s.smoothed != nil {
		p := *s.smoothed
		snap.SmoothedLocation = &p
	}
	if s.referenceBearing != nil {
		v := *s.referenceBearing
		snap.ReferenceBearing = &v
	}
	if s.currentBearing != nil {
		v := *s.currentBearing
		snap.CurrentBearing = &v
	}
	return snap
}
