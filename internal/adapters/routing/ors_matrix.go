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

type matrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Metrics   []string    `json:"metrics"`
	Units     string      `json:"units,omitempty"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// CostMatrix retrieves the full N×N matrix for metric from the
// OpenRouteService matrix endpoint. Distances are requested in kilometers.
func (o *ORSProvider) CostMatrix(
	ctx context.Context,
	coords []domain.Coordinates,
	metric domain.Metric,
) (_ domain.CostMatrix, err error) {
	defer obs.Time(ctx, o.logger, "ors.CostMatrix")(&err)

	if len(coords) < 2 {
		return nil, errors.New("ors matrix: at least two coordinates are required")
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.api.baseURL, o.profile)

	locations := make([][]float64, 0, len(coords))
	for _, c := range coords {
		locations = append(locations, c.CoordsToList())
	}

	bodyObj := matrixRequest{Locations: locations, Metrics: []string{"duration"}}
	if metric == domain.MetricDistance {
		bodyObj = matrixRequest{Locations: locations, Metrics: []string{"distance"}, Units: "km"}
	}

	payload, err := json.Marshal(bodyObj)
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.api.doWithRetry(ctx, func() (*http.Request, error) {
		body := bytes.NewReader(payload)
		return o.api.newRequest(ctx, http.MethodPost, endpoint, body)
	})
	if err != nil {
		return nil, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", err)
	}

	rows := mr.Durations
	if metric == domain.MetricDistance {
		rows = mr.Distances
	}

	m, err := toMatrix(rows, len(coords), 1)
	if err != nil {
		return nil, fmt.Errorf("ors matrix: %w", err)
	}
	return m, nil
}
