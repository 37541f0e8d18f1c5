// Package source provides candidate point sources for the rotation
// pipeline: recorded JSONL frame files, a synthetic orbit generator and a
// motion extractor over ordered image sequences.
//
// Every source returns io.EOF from Next once the input is exhausted.
package source

import (
	"context"
	"io"

	"github.com/banshee-data/rotation.report/internal/rotation"
)

// Source yields frames in order.
type Source interface {
	Next(ctx context.Context) (rotation.Frame, error)
}

// Slice replays a fixed list of frames.
type Slice struct {
	frames []rotation.Frame
	pos    int
}

// NewSlice returns a source over frames.
func NewSlice(frames []rotation.Frame) *Slice {
	return &Slice{frames: frames}
}

// Next returns the next frame or io.EOF.
func (s *Slice) Next(ctx context.Context) (rotation.Frame, error) {
	if err := ctx.Err(); err != nil {
		return rotation.Frame{}, err
	}
	if s.pos >= len(s.frames) {
		return rotation.Frame{}, io.EOF
	}
	f := s.frames[s.pos]
	s.pos++
	return f, nil
}

// Collect drains src into a slice.
func Collect(ctx context.Context, src Source) ([]rotation.Frame, error) {
	var frames []rotation.Frame
	for {
		f, err := src.Next(ctx)
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, f)
	}
}
