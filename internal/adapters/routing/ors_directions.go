package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"travel-fare-service/internal/domain"
	"travel-fare-service/internal/platform/obs"
)

type directionsRequest struct {
	Coordinates  [][]float64        `json:"coordinates"`
	Instructions bool               `json:"instructions"`
	Options      *directionsOptions `json:"options,omitempty"`
}

type directionsOptions struct {
	AvoidFeatures []string `json:"avoid_features"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
		Geometry string `json:"geometry"`
		Segments []struct {
			Steps []struct {
				Distance    float64 `json:"distance"`
				Duration    float64 `json:"duration"`
				Type        int     `json:"type"`
				Instruction string  `json:"instruction"`
				Name        string  `json:"name"`
			} `json:"steps"`
		} `json:"segments"`
	} `json:"routes"`
}

// orsStepTypes names the ORS instruction type codes.
var orsStepTypes = map[int]string{
	0: "turn", 1: "turn", 2: "turn", 3: "turn", 4: "turn", 5: "turn",
	6: "continue", 7: "roundabout", 8: "exit roundabout", 9: "uturn",
	10: "arrive", 11: "depart", 12: "fork", 13: "fork",
}

var orsStepModifiers = map[int]string{
	0: "left", 1: "right", 2: "sharp left", 3: "sharp right",
	4: "slight left", 5: "slight right", 6: "straight", 12: "left", 13: "right",
}

// Route fetches a route through coords using /v2/directions. With
// avoidTolls the request sets avoid_features=tollways.
func (o *ORSProvider) Route(
	ctx context.Context,
	coords []domain.Coordinates,
	avoidTolls bool,
) (_ *domain.RouteMetrics, err error) {
	defer obs.Time(ctx, o.logger, "ors.Route")(&err)

	if len(coords) < 2 {
		return nil, errors.New("ors directions: at least two coordinates are required")
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s", o.api.baseURL, o.profile)

	bodyObj := directionsRequest{Instructions: true}
	for _, c := range coords {
		bodyObj.Coordinates = append(bodyObj.Coordinates, c.CoordsToList())
	}
	if avoidTolls {
		bodyObj.Options = &directionsOptions{AvoidFeatures: []string{"tollways"}}
	}

	payload, err := json.Marshal(bodyObj)
	if err != nil {
		return nil, fmt.Errorf("marshal directions request: %w", err)
	}

	resp, err := o.api.doWithRetry(ctx, func() (*http.Request, error) {
		return o.api.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("decode directions response: %w", err)
	}
	if len(dr.Routes) == 0 {
		return nil, errors.New("ors directions: no route found")
	}

	route := dr.Routes[0]
	out := &domain.RouteMetrics{
		DistanceKm:      route.Summary.Distance / 1000,
		DurationSeconds: route.Summary.Duration,
		Geometry:        route.Geometry,
	}
	for _, seg := range route.Segments {
		for _, s := range seg.Steps {
			out.Steps = append(out.Steps, domain.RouteStep{
				Instruction:     s.Instruction,
				ManeuverType:    orsStepTypes[s.Type],
				Modifier:        orsStepModifiers[s.Type],
				RoadName:        s.Name,
				DistanceMeters:  s.Distance,
				DurationSeconds: s.Duration,
			})
		}
	}

	return out, nil
}
