package rotation

import (
	"gonum.org/v1/gonum/stat"
)

// Centroid returns the per-axis arithmetic mean of points.
// Callers must treat ErrEmptyPointSet as "no motion detected".
func Centroid(points []Point2D) (Point2D, error) {
	if len(points) == 0 {
		return Point2D{}, ErrEmptyPointSet
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	return Point2D{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}, nil
}
