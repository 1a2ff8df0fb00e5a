package handlers

import (
	"fmt"
	"math"
	"net/http"
	"travel-fare-service/internal/api/dto"
	"travel-fare-service/internal/domain"
	"travel-fare-service/internal/services"

	"go.uber.org/zap"
)

// FareHandler prices a known route without calling any provider, e.g. when
// only the settings changed since the last quote.
type FareHandler struct {
	Presets  *services.PresetService
	Defaults domain.FareSettings
	Logger   *zap.Logger
}

func (h *FareHandler) Fare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, h.Logger, http.MethodPost)
		return
	}

	var req dto.FareRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Logger, http.StatusBadRequest, err.Error())
		return
	}

	d, s := req.Route.DistanceKm, req.Route.DurationSeconds
	if d < 0 || s < 0 || math.IsInf(d, 0) || math.IsInf(s, 0) {
		writeError(w, r, h.Logger, http.StatusBadRequest, "route distance and duration must be finite and not negative")
		return
	}

	settings := req.Settings.Merge(h.Defaults)
	if req.PresetID != "" {
		if h.Presets == nil {
			writeServiceError(w, r, h.Logger, domain.ErrPresetNotFound)
			return
		}
		preset, err := h.Presets.Get(r.Context(), req.PresetID)
		if err != nil {
			writeServiceError(w, r, h.Logger, err)
			return
		}
		settings = preset.ApplyTo(settings)
	}

	fare := services.ComputeFare(domain.RouteMetrics{DistanceKm: d, DurationSeconds: s}, settings)
	if !fare.Finite() {
		writeServiceError(w, r, h.Logger, fmt.Errorf("fare: %w", domain.ErrFareOverflow))
		return
	}
	writeJSON(w, r, h.Logger, http.StatusOK, dto.NewFareResponse(&fare, services.FormatDuration(fare.TotalDurationSeconds)))
}
