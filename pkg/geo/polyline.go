package geo

import (
	"github.com/twpayne/go-polyline"
)

// PolylineFromCoords encodes a coordinate sequence with the google encoded
// polyline algorithm.
func PolylineFromCoords(coords []Coordinate) string {
	latLngs := make([][]float64, len(coords))
	for i, c := range coords {
		latLngs[i] = []float64{c.GetLat(), c.GetLon()}
	}
	return string(polyline.EncodeCoords(latLngs))
}

func CoordsFromPolyline(encoded string) ([]Coordinate, error) {
	latLngs, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, err
	}
	coords := make([]Coordinate, len(latLngs))
	for i, ll := range latLngs {
		coords[i] = NewCoordinate(ll[0], ll[1])
	}
	return coords, nil
}
