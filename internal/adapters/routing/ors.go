package routing

import (
	"errors"
	"time"

	"go.uber.org/zap"
)

const DefaultORSURL = "https://api.openrouteservice.org"

// ORSProvider implements ports.Geocoder, ports.CostMatrixProvider and
// ports.RouteProvider using OpenRouteService.
//
// Requests go through doWithRetry, so transient failures (429, 5xx, network
// errors) are retried with backoff before an error is returned.
//
// The provider is safe for concurrent use.
type ORSProvider struct {
	api     apiClient
	profile string
	// country restricts geocoding results (ISO 3166 code); empty means worldwide.
	country string
	logger  *zap.Logger
}

type ORSOptions struct {
	APIKey  string
	BaseURL string
	Profile string
	Country string
	Timeout time.Duration
}

func NewORSProvider(opts ORSOptions, logger *zap.Logger) (*ORSProvider, error) {
	if opts.APIKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultORSURL
	}
	if opts.Profile == "" {
		opts.Profile = "driving-car"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	provider := &ORSProvider{
		api:     newAPIClient(opts.BaseURL, opts.Timeout, map[string]string{"Authorization": opts.APIKey}),
		profile: opts.Profile,
		country: opts.Country,
		logger:  logger,
	}

	return provider, nil
}
