package api

import (
	"net/http"
	"travel-fare-service/internal/api/handlers"
	"travel-fare-service/internal/domain"
	"travel-fare-service/internal/platform/metrics"
	"travel-fare-service/internal/services"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Quotes   handlers.Quoter
	Presets  *services.PresetService
	Defaults domain.FareSettings
	Locale   string
	Logger   *zap.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	quoteHandler := &handlers.QuoteHandler{
		Quotes:   d.Quotes,
		Defaults: d.Defaults,
		Locale:   d.Locale,
		Logger:   d.Logger,
	}
	fareHandler := &handlers.FareHandler{
		Presets:  d.Presets,
		Defaults: d.Defaults,
		Logger:   d.Logger,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/quotes", quoteHandler.Quote)
	mux.HandleFunc("/fares", fareHandler.Fare)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	if d.Presets != nil {
		presetHandler := &handlers.PresetHandler{Presets: d.Presets, Logger: d.Logger}
		mux.HandleFunc("/presets", presetHandler.Collection)
		mux.HandleFunc("/presets/{id}", presetHandler.Item)
	}

	return requestIDMiddleware(loggingMiddleware(d.Logger, mux))
}
