package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/banshee-data/rotation.report/internal/rotation"
)

// ExampleConfigPath is the path to the example run configuration shipped
// with the repository.
const ExampleConfigPath = "config/rotation.example.json"

// PivotConfig is the center of rotation in pixel coordinates.
type PivotConfig struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RunConfig is the JSON configuration for one analysis run. Fields are
// pointers so a file may omit them; command-line flags fill the gaps.
type RunConfig struct {
	// Tracking params. Alpha and MaxOutlierDistance have no defaults.
	Alpha              *float64     `json:"alpha,omitempty"`
	MaxOutlierDistance *float64     `json:"max_outlier_distance,omitempty"`
	Pivot              *PivotConfig `json:"pivot,omitempty"`
	PivotFallback      *bool        `json:"pivot_fallback,omitempty"`

	// Image source params
	BackgroundThreshold *float64 `json:"background_threshold,omitempty"` // 0..100, doubled into a luma delta
	BackgroundHistory   *int     `json:"background_history,omitempty"`   // frames in the running-average background
	FrameRate           *float64 `json:"frame_rate,omitempty"`           // frames per second for elapsed time and pacing

	// Playback params
	PacePlayback *bool `json:"pace_playback,omitempty"`
}

// LoadRunConfig loads a RunConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadRunConfig(path string) (*RunConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &RunConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields that are set. Missing tracking values are
// reported by TrackingConfig, not here, so partial files stay loadable.
func (c *RunConfig) Validate() error {
	if c.Alpha != nil {
		if a := *c.Alpha; math.IsNaN(a) || a <= 0 || a > 1 {
			return fmt.Errorf("%w: alpha must be in (0, 1], got %v", rotation.ErrInvalidConfiguration, a)
		}
	}
	if c.MaxOutlierDistance != nil {
		if d := *c.MaxOutlierDistance; math.IsNaN(d) || d < 0 {
			return fmt.Errorf("%w: max_outlier_distance must be non-negative, got %v", rotation.ErrInvalidConfiguration, d)
		}
	}
	if c.BackgroundThreshold != nil {
		if v := *c.BackgroundThreshold; v < 0 || v > 100 {
			return fmt.Errorf("background_threshold must be between 0 and 100, got %v", v)
		}
	}
	if c.BackgroundHistory != nil && *c.BackgroundHistory <= 0 {
		return fmt.Errorf("background_history must be positive, got %d", *c.BackgroundHistory)
	}
	if c.FrameRate != nil && !(*c.FrameRate > 0) {
		return fmt.Errorf("frame_rate must be positive, got %v", *c.FrameRate)
	}
	return nil
}

// TrackingConfig resolves the core pipeline configuration.
func (c *RunConfig) TrackingConfig() (rotation.Config, error) {
	if c.Alpha == nil {
		return rotation.Config{}, fmt.Errorf("%w: alpha is required", rotation.ErrInvalidConfiguration)
	}
	if c.MaxOutlierDistance == nil {
		return rotation.Config{}, fmt.Errorf("%w: max_outlier_distance is required", rotation.ErrInvalidConfiguration)
	}
	tc := rotation.Config{
		Alpha:              *c.Alpha,
		MaxOutlierDistance: *c.MaxOutlierDistance,
		PivotFallback:      c.GetPivotFallback(),
	}
	if c.Pivot != nil {
		tc.Pivot = &rotation.Point2D{X: c.Pivot.X, Y: c.Pivot.Y}
	}
	if err := tc.Validate(); err != nil {
		return rotation.Config{}, err
	}
	return tc, nil
}

// SetTrackingSpeed sets alpha from the 0..100 "motion tracking speed" scale.
func (c *RunConfig) SetTrackingSpeed(speed float64) {
	alpha := speed / 100.0
	c.Alpha = &alpha
}

// GetPivotFallback returns the pivot_fallback value or the default.
func (c *RunConfig) GetPivotFallback() bool {
	if c.PivotFallback == nil {
		return false
	}
	return *c.PivotFallback
}

// GetBackgroundThreshold returns the background_threshold value or the default.
func (c *RunConfig) GetBackgroundThreshold() float64 {
	if c.BackgroundThreshold == nil {
		return 30
	}
	return *c.BackgroundThreshold
}

// GetBackgroundHistory returns the background_history value or the default.
func (c *RunConfig) GetBackgroundHistory() int {
	if c.BackgroundHistory == nil {
		return 100
	}
	return *c.BackgroundHistory
}

// GetFrameRate returns the frame_rate value or the default.
func (c *RunConfig) GetFrameRate() float64 {
	if c.FrameRate == nil {
		return 30
	}
	return *c.FrameRate
}

// GetPacePlayback returns the pace_playback value or the default.
func (c *RunConfig) GetPacePlayback() bool {
	if c.PacePlayback == nil {
		return false
	}
	return *c.PacePlayback
}

// ParamsJSON serializes the configuration for storage alongside a run.
func (c *RunConfig) ParamsJSON() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal run config: %w", err)
	}
	return string(data), nil
}
