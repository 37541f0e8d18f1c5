package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/rotation.report/internal/rotation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadRunConfig(t *testing.T) {
	path := writeConfig(t, "run.json", `{
		"alpha": 0.2,
		"max_outlier_distance": 20,
		"pivot": {"x": 320, "y": 240},
		"frame_rate": 60
	}`)

	cfg, err := LoadRunConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0.2, *cfg.Alpha)
	assert.Equal(t, 20.0, *cfg.MaxOutlierDistance)
	assert.Equal(t, &PivotConfig{X: 320, Y: 240}, cfg.Pivot)
	assert.Equal(t, 60.0, cfg.GetFrameRate())
	assert.Equal(t, 30.0, cfg.GetBackgroundThreshold())
	assert.Equal(t, 100, cfg.GetBackgroundHistory())
	assert.False(t, cfg.GetPacePlayback())
}

func TestLoadRunConfig_Rejects(t *testing.T) {
	t.Run("wrong extension", func(t *testing.T) {
		path := writeConfig(t, "run.yaml", `{}`)
		_, err := LoadRunConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ".json extension")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRunConfig(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("too large", func(t *testing.T) {
		path := writeConfig(t, "big.json", `{"alpha": 0.5, "pad": "`+strings.Repeat("x", 1024*1024)+`"}`)
		_, err := LoadRunConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too large")
	})

	t.Run("bad json", func(t *testing.T) {
		path := writeConfig(t, "bad.json", `{"alpha": `)
		_, err := LoadRunConfig(path)
		assert.Error(t, err)
	})

	t.Run("alpha out of range", func(t *testing.T) {
		path := writeConfig(t, "alpha.json", `{"alpha": 1.5}`)
		_, err := LoadRunConfig(path)
		assert.ErrorIs(t, err, rotation.ErrInvalidConfiguration)
	})
}

func TestRunConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RunConfig
		wantErr bool
	}{
		{"empty", RunConfig{}, false},
		{"alpha one", RunConfig{Alpha: ptrFloat64(1)}, false},
		{"alpha zero", RunConfig{Alpha: ptrFloat64(0)}, true},
		{"negative distance", RunConfig{MaxOutlierDistance: ptrFloat64(-0.1)}, true},
		{"zero distance", RunConfig{MaxOutlierDistance: ptrFloat64(0)}, false},
		{"threshold above 100", RunConfig{BackgroundThreshold: ptrFloat64(101)}, true},
		{"zero frame rate", RunConfig{FrameRate: ptrFloat64(0)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRunConfig_TrackingConfig(t *testing.T) {
	t.Run("alpha required", func(t *testing.T) {
		cfg := RunConfig{MaxOutlierDistance: ptrFloat64(10), Pivot: &PivotConfig{}}
		_, err := cfg.TrackingConfig()
		assert.ErrorIs(t, err, rotation.ErrInvalidConfiguration)
	})

	t.Run("distance required", func(t *testing.T) {
		cfg := RunConfig{Alpha: ptrFloat64(0.5), Pivot: &PivotConfig{}}
		_, err := cfg.TrackingConfig()
		assert.ErrorIs(t, err, rotation.ErrInvalidConfiguration)
	})

	t.Run("pivot required without fallback", func(t *testing.T) {
		cfg := RunConfig{Alpha: ptrFloat64(0.5), MaxOutlierDistance: ptrFloat64(10)}
		_, err := cfg.TrackingConfig()
		assert.ErrorIs(t, err, rotation.ErrMissingPivot)
	})

	t.Run("fallback allows missing pivot", func(t *testing.T) {
		cfg := RunConfig{Alpha: ptrFloat64(0.5), MaxOutlierDistance: ptrFloat64(10), PivotFallback: ptrBool(true)}
		tc, err := cfg.TrackingConfig()
		require.NoError(t, err)
		assert.Nil(t, tc.Pivot)
		assert.True(t, tc.PivotFallback)
	})

	t.Run("resolved", func(t *testing.T) {
		cfg := RunConfig{Alpha: ptrFloat64(0.25), MaxOutlierDistance: ptrFloat64(15), Pivot: &PivotConfig{X: 1, Y: 2}}
		tc, err := cfg.TrackingConfig()
		require.NoError(t, err)
		assert.Equal(t, rotation.Config{
			Alpha:              0.25,
			MaxOutlierDistance: 15,
			Pivot:              &rotation.Point2D{X: 1, Y: 2},
		}, tc)
	})
}

func TestRunConfig_SetTrackingSpeed(t *testing.T) {
	cfg := RunConfig{}
	cfg.SetTrackingSpeed(20)
	require.NotNil(t, cfg.Alpha)
	assert.InDelta(t, 0.2, *cfg.Alpha, 1e-12)
}

func TestRunConfig_ParamsJSON(t *testing.T) {
	cfg := RunConfig{Alpha: ptrFloat64(0.5)}
	s, err := cfg.ParamsJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"alpha":0.5}`, s)
}

func TestExampleConfigLoads(t *testing.T) {
	cfg, err := LoadRunConfig(filepath.Join("..", "..", ExampleConfigPath))
	require.NoError(t, err)
	_, err = cfg.TrackingConfig()
	assert.NoError(t, err)
}
