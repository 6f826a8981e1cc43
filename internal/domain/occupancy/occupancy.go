package occupancy

import "math"

// Occupancy levels.
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// Thresholds, in percent. Medium covers [MediumFrom, HighAbove].
const (
	MediumFrom = 50.0
	HighAbove  = 80.0
)

// Rate returns participants/capacity as a percentage rounded to two decimals.
// A zero capacity yields 0.
func Rate(participants, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	return Round2(float64(participants) / float64(capacity) * 100)
}

// Level buckets a percentage into low, medium or high.
func Level(rate float64) string {
	switch {
	case rate > HighAbove:
		return LevelHigh
	case rate >= MediumFrom:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
