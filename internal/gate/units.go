package gate

import "math"

// centimetersPerMeter is the only conversion factor between persisted
// dimensions (centimeters) and UI-facing dimensions (meters).
const centimetersPerMeter = 100.0

// MetersToCentimeters converts a UI value in meters to the persisted unit.
func MetersToCentimeters(m float64) float64 {
	return m * centimetersPerMeter
}

// CentimetersToMeters converts a persisted value in centimeters to meters.
func CentimetersToMeters(cm float64) float64 {
	return cm / centimetersPerMeter
}

// AreaM2 returns the area in square meters of a rectangle given in centimeters.
func AreaM2(aCm, bCm float64) float64 {
	return aCm * bCm / (centimetersPerMeter * centimetersPerMeter)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
