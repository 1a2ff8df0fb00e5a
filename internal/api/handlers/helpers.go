package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"travel-fare-service/internal/domain"
	"travel-fare-service/internal/platform/obs"

	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies; a quote with nine stops is well under it.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error      string `json:"error"`
	WaypointID string `json:"waypoint_id,omitempty"`
}

// writeJSON encodes v before committing the status, so an unencodable value
// becomes a 500 with an error body instead of an empty success.
func writeJSON(w http.ResponseWriter, r *http.Request, log *zap.Logger, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logger(log).Error("encode failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		status = http.StatusInternalServerError
		b = []byte(`{"error":"internal server error"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(b, '\n')); err != nil {
		logger(log).Warn("write failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, status int, msg string) {
	writeJSON(w, r, log, status, errorResponse{Error: msg})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, log *zap.Logger, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, r, log, http.StatusMethodNotAllowed, "method not allowed")
}

// decodeJSON reads exactly one JSON object into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON object")
	}
	return nil
}

// writeServiceError maps service errors to statuses. Unknown errors are
// logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrPresetNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrSuperseded):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrLocationNotFound),
		errors.Is(err, domain.ErrFareOverflow):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrMatrix),
		errors.Is(err, domain.ErrPrimaryRoute),
		errors.Is(err, domain.ErrNoRoute),
		errors.Is(err, domain.ErrLookupFailed),
		errors.Is(err, domain.ErrProviderResponse):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		logger(log).Error("request failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, r, log, status, "internal server error")
		return
	}

	res := errorResponse{Error: err.Error()}
	var wpErr *domain.WaypointError
	if errors.As(err, &wpErr) {
		res.WaypointID = wpErr.ID
	}
	writeJSON(w, r, log, status, res)
}

func logger(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
