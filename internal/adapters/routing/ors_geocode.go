package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"travel-fare-service/internal/domain"
	"travel-fare-service/internal/platform/obs"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Geocode resolves one place name using /geocode/search.
func (o *ORSProvider) Geocode(ctx context.Context, name string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, o.logger, "ors.Geocode")(&err)

	norm := strings.Join(strings.Fields(name), " ")
	if norm == "" {
		return domain.Coordinates{}, fmt.Errorf("%w: empty place name", domain.ErrInvalidInput)
	}

	endpoint := o.api.baseURL + "/geocode/search"

	resp, err := o.api.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.api.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", norm)
		if o.country != "" {
			q.Set("boundary.country", o.country)
		}
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: ors geocode %q: %w", domain.ErrLookupFailed, norm, err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: decode geocode response: %w", domain.ErrLookupFailed, err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("%w: %q", domain.ErrLocationNotFound, norm)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, fmt.Errorf("%w: invalid coordinate format for %q", domain.ErrLookupFailed, norm)
	}

	return domain.Coordinates{
		Lon: coords[0],
		Lat: coords[1],
	}, nil
}
