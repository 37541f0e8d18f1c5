package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/rotation.report/internal/rotation"
)

// frameRecord is the on-disk form of one frame: integer pixel coordinates
// as produced by a mask/edge extractor.
type frameRecord struct {
	Frame          int          `json:"frame"`
	ElapsedSeconds float64      `json:"elapsed_seconds"`
	Points         [][2]float64 `json:"points"`
}

// JSONL reads frames from newline-delimited JSON, one frame per line.
// Blank lines are skipped.
type JSONL struct {
	scanner *bufio.Scanner
	closer  io.Closer
	line    int
}

// NewJSONL reads frames from r.
func NewJSONL(r io.Reader) *JSONL {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	return &JSONL{scanner: sc}
}

// OpenJSONL opens a JSONL frame file. Close releases the file.
func OpenJSONL(path string) (*JSONL, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame file: %w", err)
	}
	j := NewJSONL(f)
	j.closer = f
	return j, nil
}

// Next decodes the next frame.
func (j *JSONL) Next(ctx context.Context) (rotation.Frame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return rotation.Frame{}, err
		}
		if !j.scanner.Scan() {
			if err := j.scanner.Err(); err != nil {
				return rotation.Frame{}, fmt.Errorf("line %d: %w", j.line+1, err)
			}
			return rotation.Frame{}, io.EOF
		}
		j.line++
		data := j.scanner.Bytes()
		if len(data) == 0 {
			continue
		}

		var rec frameRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return rotation.Frame{}, fmt.Errorf("line %d: failed to parse frame: %w", j.line, err)
		}
		f := rotation.Frame{
			Index:          rec.Frame,
			ElapsedSeconds: rec.ElapsedSeconds,
			Points:         make([]rotation.Point2D, len(rec.Points)),
		}
		for i, p := range rec.Points {
			f.Points[i] = rotation.Point2D{X: p[0], Y: p[1]}
		}
		return f, nil
	}
}

// Close closes the underlying file, if any.
func (j *JSONL) Close() error {
	if j.closer == nil {
		return nil
	}
	return j.closer.Close()
}

// WriteJSONL encodes frames one per line.
func WriteJSONL(w io.Writer, frames []rotation.Frame) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, f := range frames {
		rec := frameRecord{
			Frame:          f.Index,
			ElapsedSeconds: f.ElapsedSeconds,
			Points:         make([][2]float64, len(f.Points)),
		}
		for i, p := range f.Points {
			rec.Points[i] = [2]float64{p.X, p.Y}
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("frame %d: %w", f.Index, err)
		}
	}
	return bw.Flush()
}
