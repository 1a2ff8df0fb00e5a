package routing

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
	"travel-fare-service/internal/domain"

	"github.com/twpayne/go-polyline"
	"gopkg.in/yaml.v3"
)

// StaticPlace is one entry of a StaticProvider gazetteer.
type StaticPlace struct {
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lon  float64 `yaml:"lon"`
}

// LoadStaticPlaces reads a YAML sequence of places, each a mapping with
// name, lat and lon keys (see data/places.yaml). Entries without a name are
// rejected.
func LoadStaticPlaces(path string) ([]StaticPlace, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read places: %w", err)
	}

	var places []StaticPlace
	if err := yaml.Unmarshal(b, &places); err != nil {
		return nil, fmt.Errorf("parse places %s: %w", path, err)
	}
	for i, p := range places {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("parse places %s: entry %d has no name", path, i)
		}
	}
	return places, nil
}

// StaticProvider answers geocoding, matrix and route requests from in-process
// data, without network access. Costs are great-circle distances; durations
// assume a constant speed. Toll-free routes are TollFreeDetour times longer.
//
// Failures can be injected per operation with Fail.
type StaticProvider struct {
	places map[string]domain.Coordinates

	SpeedKmh       float64
	TollFreeDetour float64

	mu    sync.Mutex
	fail  map[string]error
	calls map[string]int
}

// Operation names accepted by Fail and Calls.
const (
	OpGeocode       = "geocode"
	OpMatrix        = "matrix"
	OpRouteToll     = "route.toll"
	OpRouteTollFree = "route.toll_free"
)

func NewStaticProvider(places []StaticPlace) *StaticProvider {
	m := make(map[string]domain.Coordinates, len(places))
	for _, p := range places {
		m[staticKey(p.Name)] = domain.Coordinates{Lat: p.Lat, Lon: p.Lon}
	}
	return &StaticProvider{
		places:         m,
		SpeedKmh:       60,
		TollFreeDetour: 1.2,
		fail:           map[string]error{},
		calls:          map[string]int{},
	}
}

// Fail makes every later call of op return err (nil clears it).
func (p *StaticProvider) Fail(op string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err == nil {
		delete(p.fail, op)
		return
	}
	p.fail[op] = err
}

// Calls reports how often op was invoked.
func (p *StaticProvider) Calls(op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[op]
}

func (p *StaticProvider) enter(op string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[op]++
	return p.fail[op]
}

func (p *StaticProvider) Geocode(ctx context.Context, name string) (domain.Coordinates, error) {
	if err := p.enter(OpGeocode); err != nil {
		return domain.Coordinates{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.Coordinates{}, err
	}

	c, ok := p.places[staticKey(name)]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("%w: %q", domain.ErrLocationNotFound, name)
	}
	return c, nil
}

func (p *StaticProvider) CostMatrix(ctx context.Context, coords []domain.Coordinates, metric domain.Metric) (domain.CostMatrix, error) {
	if err := p.enter(OpMatrix); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := make(domain.CostMatrix, len(coords))
	for i, a := range coords {
		m[i] = make([]float64, len(coords))
		for j, b := range coords {
			km := HaversineKm(a, b)
			if metric == domain.MetricDistance {
				m[i][j] = km
			} else {
				m[i][j] = p.seconds(km)
			}
		}
	}
	return m, nil
}

func (p *StaticProvider) Route(ctx context.Context, coords []domain.Coordinates, avoidTolls bool) (*domain.RouteMetrics, error) {
	op := OpRouteToll
	if avoidTolls {
		op = OpRouteTollFree
	}
	if err := p.enter(op); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(coords) < 2 {
		return nil, fmt.Errorf("static route: at least two coordinates are required")
	}

	var km float64
	for i := 0; i+1 < len(coords); i++ {
		km += HaversineKm(coords[i], coords[i+1])
	}
	if avoidTolls && p.TollFreeDetour > 0 {
		km *= p.TollFreeDetour
	}

	points := make([][]float64, len(coords))
	for i, c := range coords {
		points[i] = []float64{c.Lat, c.Lon}
	}

	return &domain.RouteMetrics{
		DistanceKm:       km,
		DurationSeconds:  p.seconds(km),
		Geometry:         string(polyline.EncodeCoords(points)),
		SnappedWaypoints: append([]domain.Coordinates(nil), coords...),
	}, nil
}

func (p *StaticProvider) seconds(km float64) float64 {
	if p.SpeedKmh <= 0 {
		return 0
	}
	return km / p.SpeedKmh * 3600
}

func staticKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

const earthRadiusKm = 6371.0

// HaversineKm is the great-circle distance between a and b.
func HaversineKm(a, b domain.Coordinates) float64 {
	rad := math.Pi / 180
	dLat := (b.Lat - a.Lat) * rad
	dLon := (b.Lon - a.Lon) * rad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*rad)*math.Cos(b.Lat*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
