package source

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/banshee-data/rotation.report/internal/rotation"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ImageSequenceConfig tunes the motion extractor.
type ImageSequenceConfig struct {
	Threshold float64 // 0..100; pixels whose luma differs from background by more than 2*Threshold are foreground
	History   int     // Frames averaged into the background model
	FrameRate float64 // Frames per second for elapsed time
}

// ImageSequence extracts candidate motion points from an ordered set of
// still frames. It keeps a running-average luma background, marks pixels
// that deviate from it as foreground, and emits the foreground pixels that
// border background (the mask outline).
type ImageSequence struct {
	paths []string
	cfg   ImageSequenceConfig

	background    []float64
	width, height int
	seen          int
	next          int
}

var imageExtensions = map[string]bool{".png": true, ".bmp": true, ".tif": true, ".tiff": true}

// OpenImageSequence lists the image files in dir, ordered by name.
func OpenImageSequence(dir string, cfg ImageSequenceConfig) (*ImageSequence, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no image frames found in %s", dir)
	}
	sort.Strings(paths)
	return NewImageSequence(paths, cfg), nil
}

// NewImageSequence returns a source over the given frame files in order.
func NewImageSequence(paths []string, cfg ImageSequenceConfig) *ImageSequence {
	if cfg.History <= 0 {
		cfg.History = 100
	}
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = 30
	}
	return &ImageSequence{paths: paths, cfg: cfg}
}

// Len returns the number of frames in the sequence.
func (s *ImageSequence) Len() int {
	return len(s.paths)
}

// Next decodes the next frame and returns its motion outline. The first
// frame only seeds the background and yields no points.
func (s *ImageSequence) Next(ctx context.Context) (rotation.Frame, error) {
	if err := ctx.Err(); err != nil {
		return rotation.Frame{}, err
	}
	if s.next >= len(s.paths) {
		return rotation.Frame{}, io.EOF
	}
	path := s.paths[s.next]
	s.next++
	index := s.next

	img, err := decodeImage(path)
	if err != nil {
		return rotation.Frame{}, err
	}
	frame := rotation.Frame{Index: index, ElapsedSeconds: float64(index) / s.cfg.FrameRate}

	luma, w, h := lumaPlane(img)
	if s.background == nil {
		s.background = luma
		s.width, s.height = w, h
		s.seen = 1
		return frame, nil
	}
	if w != s.width || h != s.height {
		return rotation.Frame{}, fmt.Errorf("%s: frame size %dx%d differs from %dx%d", path, w, h, s.width, s.height)
	}

	mask := s.foreground(luma)
	s.learn(luma)
	frame.Points = outline(mask, w, h)
	return frame, nil
}

func (s *ImageSequence) foreground(luma []float64) []bool {
	delta := 2 * s.cfg.Threshold
	mask := make([]bool, len(luma))
	for i, v := range luma {
		mask[i] = math.Abs(v-s.background[i]) > delta
	}
	return mask
}

// learn folds luma into the background with weight 1/min(seen+1, History).
func (s *ImageSequence) learn(luma []float64) {
	n := s.seen + 1
	if n > s.cfg.History {
		n = s.cfg.History
	}
	rate := 1.0 / float64(n)
	for i, v := range luma {
		s.background[i] += rate * (v - s.background[i])
	}
	s.seen++
}

// outline returns the mask pixels with at least one 4-neighbour outside the
// mask or outside the image.
func outline(mask []bool, w, h int) []rotation.Point2D {
	inMask := func(x, y int) bool {
		if x < 0 || y < 0 || x >= w || y >= h {
			return false
		}
		return mask[y*w+x]
	}
	var points []rotation.Point2D
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y*w+x] {
				continue
			}
			if !inMask(x-1, y) || !inMask(x+1, y) || !inMask(x, y-1) || !inMask(x, y+1) {
				points = append(points, rotation.Point2D{X: float64(x), Y: float64(y)})
			}
		}
	}
	return points
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

func lumaPlane(img image.Image) ([]float64, int, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]float64, w*h)
	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out[y*w+x] = float64(g.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			}
		}
		return out, w, h
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			out[y*w+x] = float64(c.Y)
		}
	}
	return out, w, h
}
