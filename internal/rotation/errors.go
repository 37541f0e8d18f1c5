package rotation

import "errors"

var (
	// ErrInvalidConfiguration is returned when alpha or the outlier distance
	// fall outside their accepted ranges. Values are never clamped.
	ErrInvalidConfiguration = errors.New("invalid tracking configuration")

	// ErrMissingPivot is returned when a bearing is requested before a pivot
	// has been established.
	ErrMissingPivot = errors.New("pivot not established")

	// ErrEmptyPointSet is returned by Centroid for an empty input.
	ErrEmptyPointSet = errors.New("empty point set")
)
