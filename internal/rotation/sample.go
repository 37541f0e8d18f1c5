package rotation

import "math"

// SamplePrecision is the number of decimal places kept for bearing and
// elapsed time in recorded samples.
const SamplePrecision = 2

// Sample is one row of the trajectory log.
type Sample struct {
	FrameIndex     int     `json:"frame_index"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	BearingDegrees float64 `json:"bearing_degrees"`
	RotationCount  int     `json:"rotation_count"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// Recorder is an append-only sample log.
type Recorder struct {
	samples []Sample
}

// Record appends a sample built from the frame's tracked state and returns it.
func (r *Recorder) Record(frameIndex int, location Point2D, bearing float64, rotations int, elapsedSeconds float64) Sample {
	s := Sample{
		FrameIndex:     frameIndex,
		X:              location.X,
		Y:              location.Y,
		BearingDegrees: roundTo(bearing, SamplePrecision),
		RotationCount:  rotations,
		ElapsedSeconds: roundTo(elapsedSeconds, SamplePrecision),
	}
	r.samples = append(r.samples, s)
	return s
}

// Samples returns a copy of the recorded samples in frame order.
func (r *Recorder) Samples() []Sample {
	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

// Len returns the number of recorded samples.
func (r *Recorder) Len() int {
	return len(r.samples)
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
