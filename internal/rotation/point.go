package rotation

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Point2D is a real-valued image-space coordinate.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point2D) vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point2D) float64 {
	return r2.Norm(r2.Sub(a.vec(), b.vec()))
}
