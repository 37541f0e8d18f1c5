package rotation

import "math"

// Bearing returns atan2(pivot.Y-location.Y, pivot.X-location.X) in degrees,
// in the range (-180, 180]. No unwrapping is applied.
func Bearing(pivot, location Point2D) float64 {
	return math.Atan2(pivot.Y-location.Y, pivot.X-location.X) * 180 / math.Pi
}

// updateBearing recomputes the current bearing from the smoothed location.
// It reports whether this call captured the reference bearing.
func (s *TrackingState) updateBearing() (bool, error) {
	if !s.hasPivot {
		return false, ErrMissingPivot
	}
	if s.smoothed == nil {
		return false, ErrEmptyPointSet
	}

	b := Bearing(s.pivot, *s.smoothed)
	s.currentBearing = &b

	if s.referenceBearing != nil {
		return false, nil
	}
	ref := b
	s.referenceBearing = &ref
	return true, nil
}
