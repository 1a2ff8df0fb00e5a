package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"travel-fare-service/internal/domain"
	"travel-fare-service/internal/platform/obs"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"
	DefaultUserAgent    = "travel-fare-service/1.0"
)

// NominatimGeocoder implements ports.Geocoder against a Nominatim server.
//
// The public instance allows one request per second; the limiter is shared by
// all callers, so concurrent lookups queue instead of being rejected.
type NominatimGeocoder struct {
	baseURL    string
	country    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

type NominatimOptions struct {
	BaseURL string
	// Country is appended to every query ("<name>, <country>"); empty disables it.
	Country   string
	UserAgent string
	// RPS is the request rate limit; zero or less means 1 request per second.
	RPS     float64
	Timeout time.Duration
}

type nominatimResponse struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func NewNominatimGeocoder(opts NominatimOptions, logger *zap.Logger) *NominatimGeocoder {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultNominatimURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.RPS <= 0 {
		opts.RPS = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &NominatimGeocoder{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		country:    opts.Country,
		userAgent:  opts.UserAgent,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.RPS), 1),
		logger:     logger,
	}
}

// Query is the search text sent for name.
func (g *NominatimGeocoder) Query(name string) string {
	name = strings.TrimSpace(name)
	if g.country == "" {
		return name
	}
	return name + ", " + g.country
}

// Geocode resolves name to the first Nominatim match. No match yields
// domain.ErrLocationNotFound; transport, status and decoding problems yield
// domain.ErrLookupFailed.
func (g *NominatimGeocoder) Geocode(ctx context.Context, name string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, g.logger, "nominatim.Geocode")(&err)

	if err := g.limiter.Wait(ctx); err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: rate limit wait: %w", domain.ErrLookupFailed, err)
	}

	q := url.Values{}
	q.Set("q", g.Query(name))
	q.Set("format", "json")
	q.Set("limit", "1")
	queryURL := g.baseURL + "/search?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: create request: %w", domain.ErrLookupFailed, err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: %w", domain.ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Coordinates{}, fmt.Errorf(
			"%w: HTTP %d: %s", domain.ErrLookupFailed, resp.StatusCode, strings.TrimSpace(string(body)),
		)
	}

	var results []nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: decode response: %w", domain.ErrLookupFailed, err)
	}
	if len(results) == 0 {
		return domain.Coordinates{}, fmt.Errorf("%w: %q", domain.ErrLocationNotFound, name)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: invalid latitude %q", domain.ErrLookupFailed, results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: invalid longitude %q", domain.ErrLookupFailed, results[0].Lon)
	}

	g.logger.Debug("geocoded",
		zap.String("req_id", obs.RequestID(ctx)),
		zap.String("name", name),
		zap.String("display_name", results[0].DisplayName),
	)

	return domain.Coordinates{Lat: lat, Lon: lon}, nil
}
