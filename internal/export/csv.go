// Package export writes recorded samples as the comma-and-space separated
// "speed data" file.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/rotation.report/internal/rotation"
	"github.com/banshee-data/rotation.report/internal/security"
)

// Header is the first line of every export.
const Header = "Frame #, x, y, Angle to Center, Rotations, Seconds elapsed"

// DefaultFilename derives the export name from the analysed source path.
func DefaultFilename(sourcePath string) string {
	return fmt.Sprintf("speed_data - %s.csv", filepath.Base(sourcePath))
}

// WriteCSV writes the header and one row per sample. Coordinates are
// truncated toward zero; bearing and seconds keep their recorded precision.
func WriteCSV(w io.Writer, samples []rotation.Sample) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Header + "\n"); err != nil {
		return err
	}
	for _, s := range samples {
		if _, err := bw.WriteString(FormatRow(s) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FormatRow renders one sample without the trailing newline.
func FormatRow(s rotation.Sample) string {
	fields := []string{
		strconv.Itoa(s.FrameIndex),
		strconv.Itoa(int(s.X)),
		strconv.Itoa(int(s.Y)),
		formatDecimal(s.BearingDegrees),
		strconv.Itoa(s.RotationCount),
		formatDecimal(s.ElapsedSeconds),
	}
	return strings.Join(fields, ", ")
}

// formatDecimal prints the shortest representation and always keeps a
// fractional part, so 45 is written as 45.0.
func formatDecimal(v float64) string {
	out := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(out, ".NI") {
		out += ".0"
	}
	return out
}

// SaveCSV writes samples to name inside dir and returns the written path.
// An empty name uses DefaultFilename(sourcePath).
func SaveCSV(dir, name, sourcePath string, samples []rotation.Sample) (string, error) {
	if name == "" {
		name = DefaultFilename(sourcePath)
	}
	path, err := security.ResolveOutputPath(dir, name)
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(f, samples); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}
