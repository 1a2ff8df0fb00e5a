package services

import (
	"fmt"
	"travel-fare-service/internal/domain"

	"github.com/twpayne/go-polyline"
)

// DecodeGeometry decodes a precision-5 encoded polyline as returned by the
// routing providers. An empty string decodes to no points.
func DecodeGeometry(encoded string) ([]domain.Coordinates, error) {
	if encoded == "" {
		return nil, nil
	}

	points, rest, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode geometry: %w", err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("decode geometry: %d trailing bytes", len(rest))
	}

	out := make([]domain.Coordinates, len(points))
	for i, p := range points {
		out[i] = domain.Coordinates{Lat: p[0], Lon: p[1]}
	}
	return out, nil
}
