package rotation

import "math"

// Rotation detector design constants. They are tied to video frame cadence
// and are not user-tunable.
const (
	// AngleTolerance is the maximum absolute difference, in degrees, between
	// the current and reference bearings for a frame to count as a return.
	AngleTolerance = 3.0

	// CooldownFrames is the number of processed frames that must be exceeded
	// since the last rotation (or since start) before another can fire.
	CooldownFrames = 31
)

// DetectorState is the debounce state of the rotation detector.
type DetectorState string

const (
	DetectorCooldown DetectorState = "cooldown" // Recently fired or warming up
	DetectorArmed    DetectorState = "armed"    // Eligible to fire on the next return
)

// detectRotation runs the debounce gate for one processed frame. evaluate is
// false on the frame that captured the reference bearing. The frame counter
// advances on every processed frame, including one that fires, so a firing
// frame leaves the counter at 1.
//
// The bearing comparison is a plain absolute difference. A point oscillating
// around the ±180° seam produces differences near 360° and will not match.
func (s *TrackingState) detectRotation(evaluate bool) bool {
	fired := false
	if evaluate && s.referenceBearing != nil && s.currentBearing != nil {
		diff := math.Abs(*s.currentBearing - *s.referenceBearing)
		if diff < AngleTolerance && s.framesSinceLastRotation > CooldownFrames {
			s.rotationCount++
			s.framesSinceLastRotation = 0
			fired = true
		}
	}
	s.framesSinceLastRotation++
	return fired
}
