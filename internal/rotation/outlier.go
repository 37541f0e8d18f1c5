package rotation

// FilterOutliers returns the points whose distance to center is at most
// maxDistance, preserving input order. An empty result means no point
// passed the gate; the caller keeps its previous tracked location.
func FilterOutliers(points []Point2D, center Point2D, maxDistance float64) []Point2D {
	filtered := make([]Point2D, 0, len(points))
	for _, p := range points {
		if Distance(p, center) <= maxDistance {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
