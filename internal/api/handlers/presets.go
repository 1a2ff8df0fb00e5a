package handlers

import (
	"net/http"
	"strings"
	"travel-fare-service/internal/api/dto"
	"travel-fare-service/internal/domain"
	"travel-fare-service/internal/services"

	"go.uber.org/zap"
)

type PresetHandler struct {
	Presets *services.PresetService
	Logger  *zap.Logger
}

// Collection serves GET (list) and POST (create or replace) on /presets.
func (h *PresetHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.save(w, r)
	default:
		methodNotAllowed(w, r, h.Logger, strings.Join([]string{http.MethodGet, http.MethodPost}, ", "))
	}
}

// Item serves GET and DELETE on /presets/{id}.
func (h *PresetHandler) Item(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		p, err := h.Presets.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, h.Logger, err)
			return
		}
		writeJSON(w, r, h.Logger, http.StatusOK, presetResponse(p))
	case http.MethodDelete:
		if err := h.Presets.Delete(r.Context(), id); err != nil {
			writeServiceError(w, r, h.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, h.Logger, strings.Join([]string{http.MethodGet, http.MethodDelete}, ", "))
	}
}

func (h *PresetHandler) list(w http.ResponseWriter, r *http.Request) {
	presets, err := h.Presets.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}

	res := dto.ListPresetsResponse{Presets: make([]dto.PresetResponse, 0, len(presets))}
	for _, p := range presets {
		res.Presets = append(res.Presets, presetResponse(p))
	}
	writeJSON(w, r, h.Logger, http.StatusOK, res)
}

func (h *PresetHandler) save(w http.ResponseWriter, r *http.Request) {
	var req dto.PresetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Logger, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.Presets.Save(r.Context(), domain.VehiclePreset{
		ID:              req.ID,
		Name:            req.Name,
		FuelConsumption: req.FuelConsumption,
		Passengers:      req.Passengers,
	})
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, r, h.Logger, http.StatusOK, presetResponse(p))
}

func presetResponse(p domain.VehiclePreset) dto.PresetResponse {
	return dto.PresetResponse{
		ID:              p.ID,
		Name:            p.Name,
		FuelConsumption: p.FuelConsumption,
		Passengers:      p.Passengers,
	}
}
