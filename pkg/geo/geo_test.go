package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		expected               float64
	}{
		{"same point", 11.3410, 77.7172, 11.3410, 77.7172, 0},
		{"erode to chennai", 11.3410, 77.7172, 13.0827, 80.2707, 336.1},
		{"london to paris", 51.5074, -0.1278, 48.8566, 2.3522, 343.5},
		{"across the antimeridian", 0, 179.5, 0, -179.5, 111.2},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			distance := Distance(test.lat1, test.lon1, test.lat2, test.lon2)
			assert.InDelta(t, test.expected, distance, 1.0)
		})
	}
}

func TestBearing(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		expected               float64
	}{
		{"due north", 0, 0, 1, 0, 0},
		{"due east", 0, 0, 0, 1, 90},
		{"due south", 1, 0, 0, 0, 180},
		{"due west", 0, 1, 0, 0, 270},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			bearing := Bearing(test.lat1, test.lon1, test.lat2, test.lon2)
			assert.InDelta(t, test.expected, bearing, 0.1)
			assert.GreaterOrEqual(t, bearing, 0.0)
			assert.Less(t, bearing, 360.0)
		})
	}
}

func TestDistanceNaNPropagation(t *testing.T) {
	assert.True(t, math.IsNaN(Distance(math.NaN(), 0, 0, 0)))
}
