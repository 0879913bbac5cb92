package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{125, "2 min 5 sec"},
		{5000, "1 hr 23 min 20 sec"},
		{0, "0 min 0 sec"},
		{3600, "1 hr 0 min 0 sec"},
		{59.4, "0 min 59 sec"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.seconds), "seconds=%v", tt.seconds)
	}
}

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		meters float64
		want   string
	}{
		{500, "500 m"},
		{12345, "12.35 km (12345 m)"},
		{1000, "1000 m"},
		{1000.5, "1.00 km (1000.5 m)"},
		{2004.9, "2.00 km (2004.9 m)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDistance(tt.meters), "meters=%v", tt.meters)
	}
}

func TestRouteCandidatePopups(t *testing.T) {
	r := RouteCandidate{DistanceMeters: 12345, DurationSeconds: 5000}

	assert.Equal(t, "Distance: 12.35 km (12345 m)<br>Duration: 1 hr 23 min 20 sec", r.DropoffPopup())
	assert.Equal(t, "Route 2: 1 hr 23 min 20 sec<br>Distance: 12.35 km (12345 m)", r.RoutePopup(2))
}

func TestFareResultDisplay(t *testing.T) {
	amount := 12.5
	whole := 20.0

	assert.Equal(t, "12.5 USD", FareResult{Estimate: FareEstimate{Amount: &amount}}.Display())
	assert.Equal(t, "20 EUR", FareResult{Estimate: FareEstimate{Amount: &whole, Currency: "EUR"}}.Display())
	assert.Equal(t, "Not available", FareResult{Estimate: FareEstimate{Provider: "bolt"}}.Display())
	assert.Equal(t, "Error", FareResult{Estimate: FareEstimate{Amount: &amount}, Err: errors.New("boom")}.Display())
}

func TestCoordinateHelpers(t *testing.T) {
	c := Coordinate{Lat: 52.3676, Lon: 4.9041}

	assert.Equal(t, []float64{4.9041, 52.3676}, c.LonLat())
	assert.True(t, c.Valid())
	assert.False(t, Coordinate{Lat: 91}.Valid())
	assert.True(t, FieldStart.Valid())
	assert.False(t, Field("middle").Valid())
}
