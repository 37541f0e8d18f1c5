package rotation

import (
	"fmt"
	"math"
)

// Config is resolved once before tracking starts. There are no defaults for
// Alpha or MaxOutlierDistance.
type Config struct {
	Alpha              float64  // EMA weight of the new raw location, in (0, 1]
	MaxOutlierDistance float64  // Outlier gate radius around the tracked point, >= 0
	Pivot              *Point2D // Center of rotation; nil requires PivotFallback
	PivotFallback      bool     // Use the first frame's raw centroid as pivot when Pivot is nil
}

// Validate rejects out-of-range values without clamping them.
func (c Config) Validate() error {
	if math.IsNaN(c.Alpha) || c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("%w: alpha must be in (0, 1], got %v", ErrInvalidConfiguration, c.Alpha)
	}
	if math.IsNaN(c.MaxOutlierDistance) || c.MaxOutlierDistance < 0 {
		return fmt.Errorf("%w: max_outlier_distance must be non-negative, got %v", ErrInvalidConfiguration, c.MaxOutlierDistance)
	}
	if c.Pivot == nil && !c.PivotFallback {
		return fmt.Errorf("%w: no pivot configured and pivot fallback disabled", ErrMissingPivot)
	}
	return nil
}
