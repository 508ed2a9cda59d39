package geo

import (
	"math"
	"testing"
)

const eps = 1e-9

// equal operator
func eq(a, b float64) bool {
	return math.Abs(a-b) <= eps
}

func TestCalculateHaversineDistance(t *testing.T) {
	oneDegreeAtEquator := earthRadiusKM * math.Pi / 180.0

	testCases := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{
			name: "same point",
			lat1: -6.1754, lon1: 106.8272,
			lat2: -6.1754, lon2: 106.8272,
			want:      0,
			tolerance: eps,
		},
		{
			name: "one degree of longitude at the equator",
			lat1: 0, lon1: 0,
			lat2: 0, lon2: 1,
			want:      oneDegreeAtEquator,
			tolerance: 1e-6,
		},
		{
			name: "one degree of latitude",
			lat1: 10, lon1: 20,
			lat2: 11, lon2: 20,
			want:      oneDegreeAtEquator,
			tolerance: 1e-6,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateHaversineDistance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("distance: got %v, want %v", got, tt.want)
			}

			back := CalculateHaversineDistance(tt.lat2, tt.lon2, tt.lat1, tt.lon1)
			if math.Abs(got-back) > eps {
				t.Errorf("distance should be symmetric: %v vs %v", got, back)
			}
		})
	}
}

func TestEquirectangularApproximation(t *testing.T) {
	lat1, lon1 := -6.1754, 106.8272
	lat2, lon2 := -6.1800, 106.8300

	want := CalculateHaversineDistance(lat1, lon1, lat2, lon2)
	got := CalculateEuclidianDistanceEquirectangularProj(lat1, lon1, lat2, lon2)

	// at sub-kilometer range the projection stays within 0.1% of haversine
	if math.Abs(got-want) > want*1e-3 {
		t.Errorf("projected distance: got %v, want about %v", got, want)
	}

	back := CalculateEuclidianDistanceEquirectangularProj(lat2, lon2, lat1, lon1)
	if math.Abs(got-back) > eps {
		t.Errorf("projected distance should be symmetric: %v vs %v", got, back)
	}
}

func TestGetDestinationPoint(t *testing.T) {
	startLat, startLon := -6.1754, 106.8272

	// destination at the given distance, verified by measuring back
	for _, bearing := range []float64{0, 45, 90, 225} {
		lat, lon := GetDestinationPoint(startLat, startLon, bearing, 5.0)
		dist := CalculateHaversineDistance(startLat, startLon, lat, lon)
		if math.Abs(dist-5.0) > 1e-6 {
			t.Errorf("bearing %v: destination %v km away, want 5", bearing, dist)
		}
	}
}
