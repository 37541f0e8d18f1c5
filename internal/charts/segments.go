// Package charts renders recorded trajectories as PNG plots (gonum/plot)
// and interactive HTML pages (go-echarts). Samples are split into segments
// of constant rotation count; each segment takes the overlay color of its
// count.
package charts

import (
	"fmt"

	"github.com/banshee-data/rotation.report/internal/overlay"
	"github.com/banshee-data/rotation.report/internal/rotation"
)

// Segment is a maximal run of consecutive samples sharing a rotation count.
type Segment struct {
	RotationCount int
	Samples       []rotation.Sample
}

// Label names the segment in legends.
func (s Segment) Label() string {
	return fmt.Sprintf("rotation %d", s.RotationCount)
}

// ColorHex is the segment's overlay color.
func (s Segment) ColorHex() string {
	return overlay.Hex(overlay.ColorForRotations(s.RotationCount))
}

// SplitSegments groups samples by rotation count without reordering them.
func SplitSegments(samples []rotation.Sample) []Segment {
	var segs []Segment
	for _, s := range samples {
		if n := len(segs); n > 0 && segs[n-1].RotationCount == s.RotationCount {
			segs[n-1].Samples = append(segs[n-1].Samples, s)
			continue
		}
		segs = append(segs, Segment{RotationCount: s.RotationCount, Samples: []rotation.Sample{s}})
	}
	return segs
}
