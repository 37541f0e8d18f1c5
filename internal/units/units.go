// Package units provides shared constants and conversion for rotation rates
package units

import (
	"math"
	"strings"
)

// Unit constants
const (
	RPM   = "rpm"
	RPS   = "rps"
	DEGPS = "degps"
	RADPS = "radps"
	HERTZ = "hz"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{RPM, RPS, DEGPS, RADPS, HERTZ}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// RevolutionsPerSecond is the average rate of a run: completed rotations
// over the elapsed seconds of its last sample. Zero or negative elapsed
// time yields 0.
func RevolutionsPerSecond(rotations int, elapsedSeconds float64) float64 {
	if elapsedSeconds <= 0 {
		return 0
	}
	return float64(rotations) / elapsedSeconds
}

// ConvertRate converts a rate from revolutions per second to the target units
func ConvertRate(revsPerSecond float64, targetUnits string) float64 {
	switch targetUnits {
	case RPM:
		return revsPerSecond * 60
	case DEGPS:
		return revsPerSecond * 360
	case RADPS:
		return revsPerSecond * 2 * math.Pi
	case RPS, HERTZ:
		return revsPerSecond
	default:
		return revsPerSecond
	}
}

// Label is the short display suffix for a unit.
func Label(unit string) string {
	switch unit {
	case RPM:
		return "rpm"
	case DEGPS:
		return "deg/s"
	case RADPS:
		return "rad/s"
	case HERTZ:
		return "Hz"
	default:
		return "rev/s"
	}
}
