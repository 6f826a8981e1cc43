package occupancy_test

import (
	"testing"

	"schoolhub/internal/domain/occupancy"
)

func TestRate(t *testing.T) {
	tests := []struct {
		participants, capacity int
		want                   float64
	}{
		{2, 12, 16.67},
		{0, 10, 0},
		{10, 10, 100},
		{1, 3, 33.33},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := occupancy.Rate(tt.participants, tt.capacity); got != tt.want {
			t.Errorf("Rate(%d, %d) = %v, want %v", tt.participants, tt.capacity, got, tt.want)
		}
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{0, occupancy.LevelLow},
		{49.99, occupancy.LevelLow},
		{50, occupancy.LevelMedium},
		{75, occupancy.LevelMedium},
		{80, occupancy.LevelMedium},
		{80.01, occupancy.LevelHigh},
		{100, occupancy.LevelHigh},
	}
	for _, tt := range tests {
		if got := occupancy.Level(tt.rate); got != tt.want {
			t.Errorf("Level(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}
