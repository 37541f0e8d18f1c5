// Package overlay derives the colors and caption lines drawn over a
// tracked frame.
package overlay

import (
	"fmt"
	"image/color"
	"math"

	"github.com/banshee-data/rotation.report/internal/rotation"
)

// Palette is indexed by rotation count modulo its length.
var Palette = []color.RGBA{
	{R: 255, G: 0, B: 0, A: 255},    // red
	{R: 255, G: 255, B: 0, A: 255},  // yellow
	{R: 0, G: 255, B: 0, A: 255},    // green
	{R: 0, G: 200, B: 255, A: 255},  // cyan
	{R: 150, G: 50, B: 255, A: 255}, // purple
}

// PivotColor marks the center of rotation.
var PivotColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// ColorForRotations returns the marker color for a rotation count.
func ColorForRotations(n int) color.RGBA {
	i := n % len(Palette)
	if i < 0 {
		i += len(Palette)
	}
	return Palette[i]
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Line is one caption row.
type Line struct {
	Text  string     `json:"text"`
	Color color.RGBA `json:"-"`
	Hex   string     `json:"color"`
}

// Caption returns the frame, seconds, angle and rotation lines for a
// tracked frame. The angle is truncated to whole degrees; seconds are
// rounded to two places.
func Caption(res rotation.FrameResult) []Line {
	rotColor := ColorForRotations(res.RotationCount)
	lines := []Line{
		{Text: fmt.Sprintf("Frame: %d", res.FrameIndex), Color: PivotColor},
		{Text: fmt.Sprintf("Seconds: %v", math.Round(res.ElapsedSeconds*100)/100), Color: PivotColor},
		{Text: fmt.Sprintf("Angle: %d", int(res.Bearing)), Color: PivotColor},
		{Text: fmt.Sprintf("Rotation: %d", res.RotationCount), Color: rotColor},
	}
	for i := range lines {
		lines[i].Hex = Hex(lines[i].Color)
	}
	return lines
}
