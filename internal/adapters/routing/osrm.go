package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
	"travel-fare-service/internal/domain"
	"travel-fare-service/internal/platform/obs"

	"go.uber.org/zap"
)

const DefaultOSRMURL = "https://router.project-osrm.org"

// OSRMProvider implements ports.CostMatrixProvider and ports.RouteProvider
// against an OSRM server (driving profile). It is safe for concurrent use.
type OSRMProvider struct {
	api    apiClient
	logger *zap.Logger
}

func NewOSRMProvider(baseURL string, timeout time.Duration, userAgent string, logger *zap.Logger) *OSRMProvider {
	if baseURL == "" {
		baseURL = DefaultOSRMURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	headers := map[string]string{}
	if userAgent != "" {
		headers["User-Agent"] = userAgent
	}

	return &OSRMProvider{
		api:    newAPIClient(baseURL, timeout, headers),
		logger: logger,
	}
}

type osrmTableResponse struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Durations [][]*float64 `json:"durations"`
	Distances [][]*float64 `json:"distances"`
}

type osrmRouteResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
	// Waypoints are the inputs snapped to the road network.
	Waypoints []struct {
		Location []float64 `json:"location"`
	} `json:"waypoints"`
}

type osrmRoute struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Geometry string  `json:"geometry"`
	Legs     []struct {
		Steps []osrmStep `json:"steps"`
	} `json:"legs"`
}

type osrmStep struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Name     string  `json:"name"`
	Maneuver struct {
		Type     string `json:"type"`
		Modifier string `json:"modifier"`
	} `json:"maneuver"`
}

// CostMatrix fetches the full N×N table for metric. Durations are seconds,
// distances kilometers; unreachable pairs are +Inf.
func (o *OSRMProvider) CostMatrix(
	ctx context.Context,
	coords []domain.Coordinates,
	metric domain.Metric,
) (_ domain.CostMatrix, err error) {
	defer obs.Time(ctx, o.logger, "osrm.CostMatrix")(&err)

	if len(coords) < 2 {
		return nil, errors.New("osrm table: at least two coordinates are required")
	}

	annotation := "duration"
	if metric == domain.MetricDistance {
		annotation = "distance"
	}
	endpoint := fmt.Sprintf("%s/table/v1/driving/%s?annotations=%s", o.api.baseURL, coordPath(coords), annotation)

	resp, err := o.api.doWithRetry(ctx, func() (*http.Request, error) {
		return o.api.newRequest(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("osrm table request: %w", err)
	}
	defer resp.Body.Close()

	var tr osrmTableResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode osrm table response: %w", err)
	}
	if tr.Code != "Ok" {
		return nil, fmt.Errorf("osrm table: code %q: %s", tr.Code, tr.Message)
	}

	rows, scale := tr.Durations, 1.0
	if metric == domain.MetricDistance {
		rows, scale = tr.Distances, 1.0/1000
	}

	return toMatrix(rows, len(coords), scale)
}

// Route fetches the fastest route visiting coords in order. With avoidTolls
// the request excludes toll roads.
func (o *OSRMProvider) Route(
	ctx context.Context,
	coords []domain.Coordinates,
	avoidTolls bool,
) (_ *domain.RouteMetrics, err error) {
	defer obs.Time(ctx, o.logger, "osrm.Route")(&err)

	if len(coords) < 2 {
		return nil, errors.New("osrm route: at least two coordinates are required")
	}

	endpoint := fmt.Sprintf(
		"%s/route/v1/driving/%s?overview=full&geometries=polyline&steps=true",
		o.api.baseURL, coordPath(coords),
	)
	if avoidTolls {
		endpoint += "&exclude=toll"
	}

	resp, err := o.api.doWithRetry(ctx, func() (*http.Request, error) {
		return o.api.newRequest(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("osrm route request: %w", err)
	}
	defer resp.Body.Close()

	var rr osrmRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, fmt.Errorf("decode osrm route response: %w", err)
	}
	if rr.Code != "Ok" || len(rr.Routes) == 0 {
		return nil, fmt.Errorf("osrm route: no route found (code %q)", rr.Code)
	}

	route := rr.Routes[0]
	out := &domain.RouteMetrics{
		DistanceKm:      route.Distance / 1000,
		DurationSeconds: route.Duration,
		Geometry:        route.Geometry,
	}

	for _, leg := range route.Legs {
		for _, s := range leg.Steps {
			out.Steps = append(out.Steps, domain.RouteStep{
				Instruction:     instruction(s.Maneuver.Type, s.Maneuver.Modifier, s.Name),
				ManeuverType:    s.Maneuver.Type,
				Modifier:        s.Maneuver.Modifier,
				RoadName:        s.Name,
				DistanceMeters:  s.Distance,
				DurationSeconds: s.Duration,
			})
		}
	}

	for _, wp := range rr.Waypoints {
		if len(wp.Location) != 2 {
			continue
		}
		out.SnappedWaypoints = append(out.SnappedWaypoints, domain.Coordinates{Lon: wp.Location[0], Lat: wp.Location[1]})
	}

	return out, nil
}

func coordPath(coords []domain.Coordinates) string {
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = c.PathSegment()
	}
	return strings.Join(parts, ";")
}

// toMatrix checks the shape of a provider table and converts null cells to +Inf.
func toMatrix(rows [][]*float64, n int, scale float64) (domain.CostMatrix, error) {
	if len(rows) != n {
		return nil, fmt.Errorf("matrix has %d rows, want %d", len(rows), n)
	}

	out := make(domain.CostMatrix, n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("matrix row %d has %d cells, want %d", i, len(row), n)
		}
		out[i] = make([]float64, n)
		for j, v := range row {
			if v == nil {
				out[i][j] = math.Inf(1)
				continue
			}
			out[i][j] = *v * scale
		}
	}
	return out, nil
}

// instruction renders a short human-readable step, e.g. "turn left onto Jalan Sudirman".
func instruction(maneuver, modifier, road string) string {
	parts := make([]string, 0, 3)
	if maneuver != "" {
		parts = append(parts, maneuver)
	}
	if modifier != "" {
		parts = append(parts, modifier)
	}
	text := strings.Join(parts, " ")
	if road == "" {
		return text
	}
	if text == "" {
		return road
	}
	return text + " onto " + road
}
