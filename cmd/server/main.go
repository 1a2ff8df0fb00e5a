package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"travel-fare-service/internal/adapters/cache"
	"travel-fare-service/internal/adapters/geocoding"
	"travel-fare-service/internal/adapters/repositories"
	"travel-fare-service/internal/adapters/routing"
	"travel-fare-service/internal/api"
	"travel-fare-service/internal/config"
	"travel-fare-service/internal/platform/db"
	"travel-fare-service/internal/platform/metrics"
	"travel-fare-service/internal/platform/obs"
	"travel-fare-service/internal/ports"
	"travel-fare-service/internal/services"

	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (database, cache, geocoder, router) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := obs.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	if !cfg.EnvFileLoaded {
		logger.Info("no .env file found (using environment variables)")
	}
	metrics.RegisterDefault()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	if cfg.PresetSeedPath != "" {
		n, err := repositories.SeedPresetsFromJSON(ctx, st.presets, cfg.PresetSeedPath)
		if err != nil {
			return err
		}
		logger.Info("presets seeded", zap.Int("count", n), zap.String("path", cfg.PresetSeedPath))
	}

	geocodeCache, closeCache := newGeocodeCache(ctx, cfg, st, logger)
	defer closeCache()

	geocoder, matrix, routes, err := newProviders(cfg, logger)
	if err != nil {
		return err
	}

	presets := services.NewPresetService(st.presets)
	aggregator := services.NewRouteAggregator(geocoder, geocodeCache, matrix, routes, logger)
	quotes := services.NewQuoteService(aggregator, presets, logger)

	router := api.NewRouter(api.Deps{
		Quotes:   quotes,
		Presets:  presets,
		Defaults: cfg.FareDefaults,
		Locale:   cfg.Locale,
		Logger:   logger,
	})

	// Timeouts are tuned for cold-cache quotes (geocoding is rate limited).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("geocoder", cfg.Geocoder),
			zap.String("router", cfg.Router),
			zap.String("store", st.kind),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type store struct {
	kind    string
	db      *sql.DB
	presets ports.PresetRepository
	cache   ports.GeocodeCache
}

func (s *store) close() {
	if s.db != nil {
		s.db.Close()
	}
}

// openStore uses Postgres when DATABASE_URL is set, process memory when
// DB_PATH is "memory" and the SQLite file at DB_PATH otherwise. The schema is
// created on startup for local runs.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*store, error) {
	if cfg.DatabaseURL == "" && cfg.DBPath == config.MemoryDBPath {
		return &store{
			kind:    "memory",
			presets: repositories.NewMemoryPresetRepository(),
			cache:   cache.NewMemoryGeocodeCache(),
		}, nil
	}

	if cfg.DatabaseURL != "" {
		pg, err := db.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := repositories.InitPostgresSchema(ctx, pg); err != nil {
			pg.Close()
			return nil, err
		}
		return &store{
			kind:    "postgres",
			db:      pg,
			presets: repositories.NewPostgresPresetRepository(pg),
			cache:   cache.NewPostgresGeocodeCache(pg, logger),
		}, nil
	}

	lite, err := db.OpenSQLite(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := repositories.InitSqliteSchema(ctx, lite); err != nil {
		lite.Close()
		return nil, err
	}
	return &store{
		kind:    "sqlite",
		db:      lite,
		presets: repositories.NewSqlitePresetRepository(lite),
		cache:   cache.NewSqliteGeocodeCache(lite, logger),
	}, nil
}

// newGeocodeCache prefers Redis when REDIS_URL is set and reachable, and
// falls back to the database cache.
func newGeocodeCache(ctx context.Context, cfg *config.Config, s *store, logger *zap.Logger) (ports.GeocodeCache, func()) {
	if cfg.RedisURL == "" {
		return s.cache, func() {}
	}

	rdb, err := cache.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Warn("redis disabled, using database geocode cache", zap.Error(err))
		return s.cache, func() {}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, using database geocode cache", zap.Error(err))
		rdb.Close()
		return s.cache, func() {}
	}

	return cache.NewRedisGeocodeCache(rdb, cfg.CacheTTL, logger), func() { rdb.Close() }
}

func newProviders(cfg *config.Config, logger *zap.Logger) (ports.Geocoder, ports.CostMatrixProvider, ports.RouteProvider, error) {
	var (
		static *routing.StaticProvider
		ors    *routing.ORSProvider
	)

	staticProvider := func() (*routing.StaticProvider, error) {
		if static == nil {
			places, err := routing.LoadStaticPlaces(cfg.PlacesPath)
			if err != nil {
				return nil, err
			}
			static = routing.NewStaticProvider(places)
		}
		return static, nil
	}
	orsProvider := func() (*routing.ORSProvider, error) {
		if ors == nil {
			p, err := routing.NewORSProvider(routing.ORSOptions{
				APIKey:  cfg.ORSAPIKey,
				BaseURL: cfg.ORSURL,
				Country: cfg.ORSCountry,
				Timeout: cfg.ProviderTimeout,
			}, logger)
			if err != nil {
				return nil, err
			}
			ors = p
		}
		return ors, nil
	}

	var geocoder ports.Geocoder
	switch cfg.Geocoder {
	case "static":
		p, err := staticProvider()
		if err != nil {
			return nil, nil, nil, err
		}
		geocoder = p
	case "ors":
		p, err := orsProvider()
		if err != nil {
			return nil, nil, nil, err
		}
		geocoder = p
	default:
		geocoder = geocoding.NewNominatimGeocoder(geocoding.NominatimOptions{
			BaseURL:   cfg.NominatimURL,
			Country:   cfg.GeocodeCountry,
			UserAgent: cfg.UserAgent,
			RPS:       cfg.GeocodeRPS,
			Timeout:   cfg.ProviderTimeout,
		}, logger)
	}

	switch cfg.Router {
	case "static":
		p, err := staticProvider()
		if err != nil {
			return nil, nil, nil, err
		}
		return geocoder, p, p, nil
	case "ors":
		p, err := orsProvider()
		if err != nil {
			return nil, nil, nil, err
		}
		return geocoder, p, p, nil
	default:
		p := routing.NewOSRMProvider(cfg.OSRMURL, cfg.ProviderTimeout, cfg.UserAgent, logger)
		return geocoder, p, p, nil
	}
}
