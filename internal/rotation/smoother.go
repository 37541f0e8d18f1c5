package rotation

// Smooth applies a first-order exponential moving average per axis:
// alpha*raw + (1-alpha)*previous. A nil previous seeds the filter with raw.
func Smooth(raw Point2D, previous *Point2D, alpha float64) Point2D {
	if previous == nil {
		return raw
	}
	return Point2D{
		X: alpha*raw.X + (1-alpha)*previous.X,
		Y: alpha*raw.Y + (1-alpha)*previous.Y,
	}
}
