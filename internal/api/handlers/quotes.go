package handlers

import (
	"context"
	"fmt"
	"net/http"
	"travel-fare-service/internal/api/dto"
	"travel-fare-service/internal/domain"
	"travel-fare-service/internal/platform/obs"
	"travel-fare-service/internal/services"

	"go.uber.org/zap"
)

// SessionHeader scopes the latest-request-wins guard to one client view.
const SessionHeader = "X-Session-Id"

// Quoter is the service used by QuoteHandler.
type Quoter interface {
	Quote(ctx context.Context, session string, req services.QuoteRequest) (*services.Quote, error)
}

type QuoteHandler struct {
	Quotes   Quoter
	Defaults domain.FareSettings
	// Locale formats the summary text (BCP 47, e.g. "id").
	Locale string
	Logger *zap.Logger
}

// Quote computes routes and fares for the posted waypoints.
func (h *QuoteHandler) Quote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, h.Logger, http.MethodPost)
		return
	}

	var req dto.QuoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Logger, http.StatusBadRequest, err.Error())
		return
	}

	mode, err := domain.ParseOptimizeMode(req.OptimizeFor)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	variant, err := domain.ParseRouteVariant(req.RouteType)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}

	waypoints := make([]domain.Waypoint, 0, len(req.Waypoints))
	for i, wp := range req.Waypoints {
		id := wp.ID
		if id == "" {
			id = fmt.Sprintf("wp-%d", i)
		}
		waypoints = append(waypoints, domain.Waypoint{ID: id, Name: wp.Name})
	}

	quote, err := h.Quotes.Quote(r.Context(), r.Header.Get(SessionHeader), services.QuoteRequest{
		Waypoints:    waypoints,
		Mode:         mode,
		Settings:     req.Settings.Merge(h.Defaults),
		PresetID:     req.PresetID,
		Variant:      variant,
		SkipTollFree: req.SkipTollFree,
	})
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}

	res, err := h.response(quote, req.IncludePath)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}

	logger(h.Logger).Info("quote computed",
		zap.String("req_id", obs.RequestID(r.Context())),
		zap.Uint64("generation", quote.Generation),
		zap.String("selected", string(quote.Selected)),
		zap.Int64("total", res.CopyValue),
	)
	writeJSON(w, r, h.Logger, http.StatusOK, res)
}

func (h *QuoteHandler) response(q *services.Quote, includePath bool) (dto.QuoteResponse, error) {
	route := q.Route

	waypoints := make([]dto.WaypointResponse, 0, len(route.Waypoints))
	for i, wp := range route.Waypoints {
		c := route.Coordinates[i]
		waypoints = append(waypoints, dto.WaypointResponse{ID: wp.ID, Name: wp.Name, Lat: c.Lat, Lon: c.Lon})
	}

	toll, err := routeResponse(route.Routes.Toll, includePath)
	if err != nil {
		return dto.QuoteResponse{}, err
	}
	tollFree, err := routeResponse(route.Routes.TollFree, includePath)
	if err != nil {
		return dto.QuoteResponse{}, err
	}

	res := dto.QuoteResponse{
		Generation: q.Generation,
		Waypoints:  waypoints,
		Order:      route.Order,
		Reordered:  route.Reordered,
		Routes:     dto.RoutesResponse{Toll: toll, TollFree: tollFree},
		Settings:   dto.NewFareSettingsResponse(q.Settings),
		Fares: dto.FaresResponse{
			Toll:     fareResponse(q.Fares.Toll),
			TollFree: fareResponse(q.Fares.TollFree),
		},
		Selected: string(q.Selected),
	}
	if route.TollFreeErr != nil {
		res.TollFreeError = route.TollFreeErr.Error()
	}
	if fare := q.SelectedFare(); fare != nil {
		res.Summary = services.Summarize(*fare, q.Selected, h.Locale)
		res.CopyValue = services.CopyValue(*fare)
	}
	return res, nil
}

func routeResponse(m *domain.RouteMetrics, includePath bool) (*dto.RouteResponse, error) {
	if m == nil {
		return nil, nil
	}

	res := &dto.RouteResponse{
		DistanceKm:       m.DistanceKm,
		DurationSeconds:  m.DurationSeconds,
		DurationText:     services.FormatDuration(m.DurationSeconds),
		TollCost:         m.TollCost,
		Geometry:         m.Geometry,
		Steps:            make([]dto.RouteStepResponse, 0, len(m.Steps)),
		SnappedWaypoints: coordinatesResponse(m.SnappedWaypoints),
	}
	for _, s := range m.Steps {
		res.Steps = append(res.Steps, dto.RouteStepResponse{
			Instruction:     s.Instruction,
			Maneuver:        s.ManeuverType,
			Modifier:        s.Modifier,
			Road:            s.RoadName,
			DistanceMeters:  s.DistanceMeters,
			DurationSeconds: s.DurationSeconds,
		})
	}

	if includePath {
		path, err := services.DecodeGeometry(m.Geometry)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrProviderResponse, err)
		}
		res.Path = coordinatesResponse(path)
	}
	return res, nil
}

func coordinatesResponse(cs []domain.Coordinates) []dto.CoordinatesResponse {
	if len(cs) == 0 {
		return nil
	}
	out := make([]dto.CoordinatesResponse, len(cs))
	for i, c := range cs {
		out[i] = dto.CoordinatesResponse{Lat: c.Lat, Lon: c.Lon}
	}
	return out
}

func fareResponse(f *domain.FareDetails) *dto.FareResponse {
	if f == nil {
		return nil
	}
	return dto.NewFareResponse(f, services.FormatDuration(f.TotalDurationSeconds))
}
