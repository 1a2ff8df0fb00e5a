package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"travel-fare-service/internal/adapters/cache"
	"travel-fare-service/internal/adapters/repositories"
	"travel-fare-service/internal/adapters/routing"
	"travel-fare-service/internal/api/dto"
	"travel-fare-service/internal/domain"
	"travel-fare-service/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func defaults() domain.FareSettings {
	return domain.FareSettings{
		RoundTrip:       true,
		FuelConsumption: 10,
		FuelUnitPrice:   16500,
		FixedCost:       250000,
		MarginPercent:   20,
		Passengers:      12,
	}
}

func newPresets(initial ...domain.VehiclePreset) *services.PresetService {
	return services.NewPresetService(repositories.NewMemoryPresetRepository(initial...))
}

func newQuoteHandler(t *testing.T) (*QuoteHandler, *routing.StaticProvider) {
	t.Helper()
	p := routing.NewStaticProvider([]routing.StaticPlace{
		{Name: "Jakarta", Lat: -6.2, Lon: 106.8},
		{Name: "Bogor", Lat: -6.6, Lon: 106.8},
		{Name: "Bandung", Lat: -6.9, Lon: 107.6},
	})
	log := zaptest.NewLogger(t)
	agg := services.NewRouteAggregator(p, cache.NewMemoryGeocodeCache(), p, p, log)
	presets := newPresets(domain.VehiclePreset{ID: "hiace", Name: "Hiace", FuelConsumption: 8, Passengers: 14})

	return &QuoteHandler{
		Quotes:   services.NewQuoteService(agg, presets, log),
		Defaults: defaults(),
		Locale:   "en",
		Logger:   log,
	}, p
}

func post(t *testing.T, h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestQuoteHandler(t *testing.T) {
	h, _ := newQuoteHandler(t)

	rec := post(t, h.Quote, "/quotes", `{
		"waypoints": [{"id": "a", "name": "Jakarta"}, {"id": "b", "name": "Bandung"}],
		"include_path": true
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	res := decode[dto.QuoteResponse](t, rec)
	assert.Equal(t, []int{0, 1}, res.Order)
	assert.False(t, res.Reordered)
	require.Len(t, res.Waypoints, 2)
	assert.Equal(t, "a", res.Waypoints[0].ID)
	assert.InDelta(t, -6.2, res.Waypoints[0].Lat, 1e-9)

	require.NotNil(t, res.Routes.Toll)
	require.NotNil(t, res.Routes.TollFree)
	assert.Len(t, res.Routes.Toll.Path, 2)
	assert.NotEmpty(t, res.Routes.Toll.DurationText)
	assert.Empty(t, res.TollFreeError)

	require.NotNil(t, res.Fares.Toll)
	require.NotNil(t, res.Fares.TollFree)
	assert.Greater(t, res.Fares.TollFree.Total, res.Fares.Toll.Total)
	assert.Equal(t, "toll", res.Selected)
	assert.Equal(t, int64(math.Round(res.Fares.Toll.Total)), res.CopyValue)
	assert.True(t, strings.HasPrefix(res.Summary, "Standard route (may include tolls)\n"), res.Summary)
	assert.Equal(t, 12, res.Settings.Passengers)
}

func TestQuoteHandlerReorderAndPreset(t *testing.T) {
	h, p := newQuoteHandler(t)

	rec := post(t, h.Quote, "/quotes", `{
		"waypoints": [{"name": "Jakarta"}, {"name": "Bandung"}, {"name": "Bogor"}, {"name": "Bandung"}],
		"optimize_for": "distance",
		"preset_id": "hiace",
		"route_type": "toll_free",
		"skip_toll_free": false,
		"settings": {"round_trip": false, "fuel_unit_price": 10000}
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[dto.QuoteResponse](t, rec)
	assert.Equal(t, []int{0, 2, 1, 3}, res.Order)
	assert.True(t, res.Reordered)
	assert.Equal(t, "wp-2", res.Waypoints[1].ID)
	assert.Nil(t, res.Routes.Toll.Path)
	assert.Equal(t, "toll_free", res.Selected)
	assert.True(t, strings.HasPrefix(res.Summary, "Alternate route (avoids tolls)\n"), res.Summary)

	assert.False(t, res.Settings.RoundTrip)
	assert.Equal(t, 10000.0, res.Settings.FuelUnitPrice)
	assert.Equal(t, 8.0, res.Settings.FuelConsumption)
	assert.Equal(t, 14, res.Settings.Passengers)
	assert.Equal(t, 1, p.Calls(routing.OpMatrix))
}

func TestQuoteHandlerTollFreeFailure(t *testing.T) {
	h, p := newQuoteHandler(t)
	p.Fail(routing.OpRouteTollFree, errors.New("upstream timeout"))

	rec := post(t, h.Quote, "/quotes", `{"waypoints": [{"name": "Jakarta"}, {"name": "Bogor"}], "route_type": "toll_free"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[dto.QuoteResponse](t, rec)
	assert.NotNil(t, res.Routes.Toll)
	assert.Nil(t, res.Routes.TollFree)
	assert.Nil(t, res.Fares.TollFree)
	assert.Contains(t, res.TollFreeError, "upstream timeout")
	assert.Equal(t, "toll", res.Selected)
}

func TestQuoteHandlerLocationNotFound(t *testing.T) {
	h, _ := newQuoteHandler(t)

	rec := post(t, h.Quote, "/quotes", `{"waypoints": [{"id": "x", "name": "Jakarta"}, {"id": "y", "name": "Atlantis"}]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	res := decode[errorResponse](t, rec)
	assert.Equal(t, "y", res.WaypointID)
	assert.Contains(t, res.Error, "Atlantis")
}

type quoterFunc func(ctx context.Context, session string, req services.QuoteRequest) (*services.Quote, error)

func (f quoterFunc) Quote(ctx context.Context, session string, req services.QuoteRequest) (*services.Quote, error) {
	return f(ctx, session, req)
}

func TestQuoteHandlerErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"invalid input", fmt.Errorf("quote: %w: too many stops", domain.ErrInvalidInput), http.StatusBadRequest, ""},
		{"preset", fmt.Errorf("quote: %w", domain.ErrPresetNotFound), http.StatusNotFound, ""},
		{"superseded", fmt.Errorf("quote: %w", domain.ErrSuperseded), http.StatusConflict, ""},
		{"matrix", fmt.Errorf("%w: boom", domain.ErrMatrix), http.StatusBadGateway, ""},
		{"primary", &domain.RouteError{Variant: domain.VariantToll, Err: domain.ErrPrimaryRoute}, http.StatusBadGateway, ""},
		{"no route", domain.ErrNoRoute, http.StatusBadGateway, ""},
		{"lookup", &domain.WaypointError{Index: 1, ID: "b", Err: domain.ErrLookupFailed}, http.StatusBadGateway, ""},
		{"fare overflow", fmt.Errorf("quote: %w", domain.ErrFareOverflow), http.StatusUnprocessableEntity, ""},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &QuoteHandler{
				Quotes: quoterFunc(func(context.Context, string, services.QuoteRequest) (*services.Quote, error) {
					return nil, tt.err
				}),
				Logger: zaptest.NewLogger(t),
			}

			rec := post(t, h.Quote, "/quotes", `{"waypoints": [{"name": "A"}, {"name": "B"}]}`)
			assert.Equal(t, tt.status, rec.Code)

			res := decode[errorResponse](t, rec)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, res.Error)
			} else {
				assert.Equal(t, tt.err.Error(), res.Error)
			}
		})
	}
}

func TestQuoteHandlerUndecodableGeometry(t *testing.T) {
	quote := &services.Quote{
		Route: &services.RouteResult{
			Waypoints:   []domain.Waypoint{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}},
			Coordinates: []domain.Coordinates{{}, {Lon: 1}},
			Order:       []int{0, 1},
			Routes:      domain.RoutePair{Toll: &domain.RouteMetrics{DistanceKm: 10, Geometry: "_p~iF~ps|"}},
		},
		Settings: defaults(),
		Selected: domain.VariantToll,
	}
	h := &QuoteHandler{
		Quotes: quoterFunc(func(context.Context, string, services.QuoteRequest) (*services.Quote, error) {
			return quote, nil
		}),
		Logger: zaptest.NewLogger(t),
	}

	rec := post(t, h.Quote, "/quotes", `{"waypoints": [{"name": "A"}, {"name": "B"}], "include_path": true}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Error, "invalid provider response")

	// Without the decoded path the raw geometry is passed through.
	rec = post(t, h.Quote, "/quotes", `{"waypoints": [{"name": "A"}, {"name": "B"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "_p~iF~ps|", decode[dto.QuoteResponse](t, rec).Routes.Toll.Geometry)
}

func TestQuoteHandlerRequestMapping(t *testing.T) {
	var got services.QuoteRequest
	var session string
	h := &QuoteHandler{
		Quotes: quoterFunc(func(_ context.Context, s string, req services.QuoteRequest) (*services.Quote, error) {
			got, session = req, s
			return nil, domain.ErrNoRoute
		}),
		Defaults: defaults(),
	}

	req := httptest.NewRequest(http.MethodPost, "/quotes", strings.NewReader(`{
		"waypoints": [{"id": "s", "name": "A"}, {"name": "B"}],
		"optimize_for": "duration",
		"skip_toll_free": true,
		"settings": {"passengers": 4, "manual_toll_cost": 75000}
	}`))
	req.Header.Set(SessionHeader, "tab-1")
	rec := httptest.NewRecorder()
	h.Quote(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "tab-1", session)
	assert.Equal(t, []domain.Waypoint{{ID: "s", Name: "A"}, {ID: "wp-1", Name: "B"}}, got.Waypoints)
	assert.Equal(t, domain.MinimizeDuration, got.Mode)
	assert.Equal(t, domain.VariantToll, got.Variant)
	assert.True(t, got.SkipTollFree)

	want := defaults()
	want.Passengers = 4
	want.ManualTollCost = 75000
	assert.Equal(t, want, got.Settings)
}

func TestQuoteHandlerBadRequest(t *testing.T) {
	called := false
	h := &QuoteHandler{
		Quotes: quoterFunc(func(context.Context, string, services.QuoteRequest) (*services.Quote, error) {
			called = true
			return nil, errors.New("unreachable")
		}),
	}

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"waypoints": [`},
		{"unknown field", `{"waypoints": [], "hub": "x"}`},
		{"two objects", `{"waypoints": []} {}`},
		{"optimize mode", `{"waypoints": [{"name": "A"}, {"name": "B"}], "optimize_for": "fastest"}`},
		{"route type", `{"waypoints": [{"name": "A"}, {"name": "B"}], "route_type": "scenic"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h.Quote, "/quotes", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
	assert.False(t, called)
}

func TestMethodNotAllowed(t *testing.T) {
	h := &QuoteHandler{}
	rec := httptest.NewRecorder()
	h.Quote(rec, httptest.NewRequest(http.MethodGet, "/quotes", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))

	rec = httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestFareHandler(t *testing.T) {
	h := &FareHandler{
		Presets:  newPresets(domain.VehiclePreset{ID: "elf", Name: "Elf", FuelConsumption: 5, Passengers: 20}),
		Defaults: defaults(),
		Logger:   zaptest.NewLogger(t),
	}

	rec := post(t, h.Fare, "/fares", `{"route": {"distance_km": 100, "duration_seconds": 7200}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[dto.FareResponse](t, rec)
	assert.Equal(t, 200.0, res.TotalDistanceKm)
	assert.Equal(t, 330000.0, res.FuelCost)
	assert.Equal(t, 696000.0, res.Total)
	assert.Equal(t, 58000.0, res.PerPassenger)
	assert.Equal(t, "4h 0m", res.DurationText)

	rec = post(t, h.Fare, "/fares", `{"route": {"distance_km": 100, "duration_seconds": 3600}, "preset_id": "elf", "settings": {"round_trip": false}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res = decode[dto.FareResponse](t, rec)
	// 20 L at 16500 plus the fixed cost, then 20% margin.
	assert.Equal(t, 696000.0, res.Total)
	assert.Equal(t, 34800.0, res.PerPassenger)

	rec = post(t, h.Fare, "/fares", `{"route": {"distance_km": 10}, "preset_id": "missing"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = post(t, h.Fare, "/fares", `{"route": {"distance_km": -1}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFareHandlerOverflow(t *testing.T) {
	h := &FareHandler{Defaults: defaults(), Logger: zaptest.NewLogger(t)}

	rec := post(t, h.Fare, "/fares", `{
		"route": {"distance_km": 1e308, "duration_seconds": 60},
		"settings": {"round_trip": true, "fuel_consumption": 10, "fuel_unit_price": 1}
	}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Error, "not representable")
}

func TestWriteJSONUnencodableValue(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, httptest.NewRequest(http.MethodGet, "/fares", nil), zaptest.NewLogger(t), http.StatusOK,
		map[string]float64{"total": math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestPresetHandler(t *testing.T) {
	h := &PresetHandler{Presets: newPresets(), Logger: zaptest.NewLogger(t)}
	mux := http.NewServeMux()
	mux.HandleFunc("/presets", h.Collection)
	mux.HandleFunc("/presets/{id}", h.Item)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
		return rec
	}

	rec := do(http.MethodPost, "/presets", `{"name": " Hiace ", "fuel_consumption": 8, "passengers": 14}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[dto.PresetResponse](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Hiace", created.Name)

	rec = do(http.MethodPost, "/presets", `{"id": "avanza", "name": "Avanza", "fuel_consumption": 12, "passengers": 6}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(http.MethodGet, "/presets", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[dto.ListPresetsResponse](t, rec)
	require.Len(t, list.Presets, 2)
	assert.Equal(t, "Avanza", list.Presets[0].Name)
	assert.Equal(t, "Hiace", list.Presets[1].Name)

	rec = do(http.MethodGet, "/presets/avanza", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 6, decode[dto.PresetResponse](t, rec).Passengers)

	rec = do(http.MethodPost, "/presets", `{"name": "", "fuel_consumption": 8}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(http.MethodDelete, "/presets/avanza", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(http.MethodDelete, "/presets/avanza", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(http.MethodGet, "/presets/avanza", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(http.MethodPut, "/presets/"+created.ID, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, DELETE", rec.Header().Get("Allow"))
}
