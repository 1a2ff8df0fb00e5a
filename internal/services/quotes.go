package services

import (
	"context"
	"errors"
	"fmt"
	"travel-fare-service/internal/domain"
	"travel-fare-service/internal/platform/metrics"
	"travel-fare-service/internal/platform/obs"

	"go.uber.org/zap"
)

// RouteFetcher is the part of RouteAggregator QuoteService depends on.
type RouteFetcher interface {
	FetchRoutes(ctx context.Context, req RouteRequest) (*RouteResult, error)
}

// QuoteRequest is one fare calculation.
type QuoteRequest struct {
	Waypoints []domain.Waypoint
	Mode      domain.OptimizeMode
	Settings  domain.FareSettings
	// PresetID, when set, overrides the vehicle fields of Settings.
	PresetID     string
	Variant      domain.RouteVariant
	SkipTollFree bool
}

// Quote is the priced result of a calculation.
type Quote struct {
	Generation uint64
	Route      *RouteResult
	Settings   domain.FareSettings
	Fares      domain.FareComparison
	// Selected is the requested variant, or the other one if it is missing.
	Selected domain.RouteVariant
}

// SelectedFare returns the breakdown of the selected variant.
func (q *Quote) SelectedFare() *domain.FareDetails { return q.Fares.Get(q.Selected) }

// QuoteService turns waypoints and a cost model into priced route options.
// Calculations that share a session id are guarded: the latest one wins and
// older in-flight ones fail with domain.ErrSuperseded.
type QuoteService struct {
	Routes  RouteFetcher
	Presets *PresetService
	Guard   *GenerationGuard
	Logger  *zap.Logger
}

func NewQuoteService(routes RouteFetcher, presets *PresetService, logger *zap.Logger) *QuoteService {
	return &QuoteService{
		Routes:  routes,
		Presets: presets,
		Guard:   NewGenerationGuard(),
		Logger:  logger,
	}
}

func (s *QuoteService) log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// Quote runs one calculation for session (may be empty).
func (s *QuoteService) Quote(ctx context.Context, session string, req QuoteRequest) (q *Quote, err error) {
	defer func() { metrics.QuoteCalculations.WithLabelValues(outcome(err)).Inc() }()

	settings := req.Settings
	if req.PresetID != "" {
		if s.Presets == nil {
			return nil, fmt.Errorf("quote: %w: presets are not configured", domain.ErrPresetNotFound)
		}
		preset, err := s.Presets.Get(ctx, req.PresetID)
		if err != nil {
			return nil, fmt.Errorf("quote: %w", err)
		}
		settings = preset.ApplyTo(settings)
	}

	ctx, ticket := s.Guard.Begin(ctx, session)
	defer ticket.Done()

	res, err := s.Routes.FetchRoutes(ctx, RouteRequest{
		Waypoints:    req.Waypoints,
		Mode:         req.Mode,
		SkipTollFree: req.SkipTollFree,
	})

	// A newer calculation cancelled this one or finished first; either way
	// this result must not be reported.
	if !ticket.Current() {
		s.log().Info("quote superseded",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.String("session", session),
			zap.Uint64("generation", ticket.Generation()),
		)
		return nil, fmt.Errorf("quote: %w", domain.ErrSuperseded)
	}
	if err != nil {
		return nil, fmt.Errorf("quote: %w", err)
	}

	selected := req.Variant
	if selected == "" {
		selected = domain.VariantToll
	}
	if res.Routes.Get(selected) == nil {
		if selected == domain.VariantToll {
			selected = domain.VariantTollFree
		} else {
			selected = domain.VariantToll
		}
	}

	fares := ComputeFares(res.Routes, settings)
	for _, f := range []*domain.FareDetails{fares.Toll, fares.TollFree} {
		if f != nil && !f.Finite() {
			return nil, fmt.Errorf("quote: %w", domain.ErrFareOverflow)
		}
	}

	return &Quote{
		Generation: ticket.Generation(),
		Route:      res,
		Settings:   settings,
		Fares:      fares,
		Selected:   selected,
	}, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrSuperseded):
		return "superseded"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrLocationNotFound):
		return "location_not_found"
	case errors.Is(err, domain.ErrNoRoute):
		return "no_route"
	case errors.Is(err, domain.ErrFareOverflow):
		return "fare_overflow"
	default:
		return "error"
	}
}
