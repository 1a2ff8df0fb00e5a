package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"travel-fare-service/internal/domain"
	"travel-fare-service/internal/platform/metrics"
	"travel-fare-service/internal/platform/obs"
	"travel-fare-service/internal/ports"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RouteRequest describes one route calculation.
type RouteRequest struct {
	Waypoints []domain.Waypoint
	Mode      domain.OptimizeMode
	// SkipTollFree requests only the toll-permitting variant.
	SkipTollFree bool
}

// RouteResult is the outcome of a successful route calculation.
// Waypoints and Coordinates are in travel order; Order maps each position
// back to the index in the request.
type RouteResult struct {
	Waypoints   []domain.Waypoint
	Coordinates []domain.Coordinates
	Order       []int
	Reordered   bool
	Routes      domain.RoutePair
	// TollFreeErr records why the toll-avoiding variant is missing, if it is.
	TollFreeErr error
}

// RouteAggregator resolves waypoints, optionally reorders them and fetches
// both route variants. It owns no retry logic: every collaborator is called
// at most once per FetchRoutes.
//
// Cache may be nil. The aggregator is safe for concurrent use as long as its
// collaborators are.
type RouteAggregator struct {
	Geocoder ports.Geocoder
	Cache    ports.GeocodeCache
	Matrix   ports.CostMatrixProvider
	Routes   ports.RouteProvider
	Logger   *zap.Logger
}

func NewRouteAggregator(
	geocoder ports.Geocoder,
	cache ports.GeocodeCache,
	matrix ports.CostMatrixProvider,
	routes ports.RouteProvider,
	logger *zap.Logger,
) *RouteAggregator {
	return &RouteAggregator{
		Geocoder: geocoder,
		Cache:    cache,
		Matrix:   matrix,
		Routes:   routes,
		Logger:   logger,
	}
}

func (a *RouteAggregator) log() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

// FetchRoutes runs the whole pipeline: validate, geocode, reorder (unless
// req.Mode is KeepOrder or there are only two waypoints), then fetch the
// toll-permitting and toll-avoiding routes concurrently.
//
// A failing toll-avoiding fetch is tolerated and reported in
// RouteResult.TollFreeErr. A failing toll-permitting fetch aborts with
// domain.ErrPrimaryRoute, or with domain.ErrNoRoute when no variant succeeded.
func (a *RouteAggregator) FetchRoutes(ctx context.Context, req RouteRequest) (_ *RouteResult, err error) {
	defer obs.Time(ctx, a.log(), "routes.FetchRoutes")(&err)

	if err := domain.ValidateWaypoints(req.Waypoints); err != nil {
		return nil, fmt.Errorf("fetch routes: %w", err)
	}

	metric, optimize := req.Mode.Metric()
	optimize = optimize && len(req.Waypoints) > 2
	if optimize && len(req.Waypoints)-2 > MaxInteriorPoints {
		return nil, fmt.Errorf(
			"fetch routes: %w: %d intermediate stops exceed the optimization limit of %d",
			domain.ErrInvalidInput, len(req.Waypoints)-2, MaxInteriorPoints,
		)
	}

	coords, err := a.ResolveCoordinates(ctx, req.Waypoints)
	if err != nil {
		return nil, fmt.Errorf("fetch routes: %w", err)
	}

	res := &RouteResult{
		Waypoints:   append([]domain.Waypoint(nil), req.Waypoints...),
		Coordinates: coords,
		Order:       identityOrder(len(coords)),
	}

	if optimize {
		order, err := a.optimalOrder(ctx, coords, metric)
		if err != nil {
			return nil, fmt.Errorf("fetch routes: %w", err)
		}

		res.Order = order
		res.Waypoints = domain.Reorder(req.Waypoints, order)
		res.Coordinates = domain.Reorder(coords, order)
		for i, idx := range order {
			if i != idx {
				res.Reordered = true
				break
			}
		}
	}

	fetched, err := a.fetchPair(ctx, res.Coordinates, req.SkipTollFree)
	if err != nil {
		return nil, fmt.Errorf("fetch routes: %w", err)
	}
	res.Routes = fetched.pair
	res.TollFreeErr = fetched.tollFreeErr

	a.log().Info("routes fetched",
		zap.String("req_id", obs.RequestID(ctx)),
		zap.Int("waypoints", len(res.Waypoints)),
		zap.String("mode", string(req.Mode)),
		zap.Bool("reordered", res.Reordered),
		zap.Bool("toll", res.Routes.Toll != nil),
		zap.Bool("toll_free", res.Routes.TollFree != nil),
	)

	return res, nil
}

// ResolveCoordinates geocodes every waypoint, consulting the cache first.
// Distinct uncached names are looked up concurrently; the first failure
// cancels the remaining lookups and is returned as a *domain.WaypointError.
func (a *RouteAggregator) ResolveCoordinates(ctx context.Context, waypoints []domain.Waypoint) ([]domain.Coordinates, error) {
	if a.Geocoder == nil {
		return nil, errors.New("resolve coordinates: geocoder is nil")
	}

	// First position of every distinct name, so errors point at a waypoint.
	firstIndex := make(map[string]int, len(waypoints))
	names := make([]string, 0, len(waypoints))
	for i, wp := range waypoints {
		name := wp.TrimmedName()
		if name == "" {
			return nil, &domain.WaypointError{
				Index: i,
				ID:    wp.ID,
				Err:   fmt.Errorf("%w: waypoint name cannot be empty", domain.ErrInvalidInput),
			}
		}
		if _, ok := firstIndex[name]; ok {
			continue
		}
		firstIndex[name] = i
		names = append(names, name)
	}

	hits := a.cachedCoordinates(ctx, names)

	misses := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := hits[name]; !ok {
			misses = append(misses, name)
		}
	}
	metrics.GeocodeCacheLookups.WithLabelValues("hit").Add(float64(len(names) - len(misses)))
	metrics.GeocodeCacheLookups.WithLabelValues("miss").Add(float64(len(misses)))

	var mu sync.Mutex
	fresh := make(map[string]domain.Coordinates, len(misses))

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range misses {
		g.Go(func() (err error) {
			defer obs.Time(gctx, a.log(), "geocode")(&err)

			c, err := a.Geocoder.Geocode(gctx, name)
			if err != nil {
				if !errors.Is(err, domain.ErrLocationNotFound) && !errors.Is(err, domain.ErrLookupFailed) {
					err = fmt.Errorf("%w: %w", domain.ErrLookupFailed, err)
				}
				i := firstIndex[name]
				return &domain.WaypointError{Index: i, ID: waypoints[i].ID, Name: name, Err: err}
			}

			mu.Lock()
			fresh[name] = c
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolve coordinates: %w", err)
	}

	if a.Cache != nil && len(fresh) > 0 {
		if err := a.Cache.PutMany(ctx, fresh); err != nil {
			a.log().Warn("geocode cache write failed", zap.String("req_id", obs.RequestID(ctx)), zap.Error(err))
		}
	}

	coords := make([]domain.Coordinates, len(waypoints))
	for i, wp := range waypoints {
		name := wp.TrimmedName()
		if c, ok := hits[name]; ok {
			coords[i] = c
			continue
		}
		coords[i] = fresh[name]
	}

	return coords, nil
}

// cachedCoordinates reads the cache. A failing cache degrades to misses.
func (a *RouteAggregator) cachedCoordinates(ctx context.Context, names []string) map[string]domain.Coordinates {
	if a.Cache == nil {
		return map[string]domain.Coordinates{}
	}

	hits, err := a.Cache.GetMany(ctx, names)
	if err != nil {
		a.log().Warn("geocode cache read failed", zap.String("req_id", obs.RequestID(ctx)), zap.Error(err))
		return map[string]domain.Coordinates{}
	}
	if hits == nil {
		return map[string]domain.Coordinates{}
	}
	return hits
}

func (a *RouteAggregator) optimalOrder(ctx context.Context, coords []domain.Coordinates, metric domain.Metric) (_ []int, err error) {
	defer obs.Time(ctx, a.log(), "routes.optimalOrder")(&err)

	if a.Matrix == nil {
		return nil, fmt.Errorf("%w: no cost matrix provider configured", domain.ErrMatrix)
	}

	matrix, err := a.Matrix.CostMatrix(ctx, coords, metric)
	if err != nil {
		return nil, fmt.Errorf("%w: %s matrix: %w", domain.ErrMatrix, metric, err)
	}

	if len(matrix) != len(coords) {
		return nil, fmt.Errorf("%w: matrix size %d does not match %d coordinates", domain.ErrMatrix, len(matrix), len(coords))
	}
	if err := ValidateCostMatrix(matrix); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMatrix, err)
	}

	return OptimalOrder(matrix), nil
}

// pairResult is a fetched RoutePair plus the tolerated toll-free failure.
type pairResult struct {
	pair        domain.RoutePair
	tollFreeErr error
}

// fetchPair fetches both variants concurrently. The returned error is fatal;
// a toll-free failure alone is reported in pairResult.tollFreeErr.
func (a *RouteAggregator) fetchPair(
	ctx context.Context,
	coords []domain.Coordinates,
	skipTollFree bool,
) (pairResult, error) {
	var (
		wg                   sync.WaitGroup
		pair                 domain.RoutePair
		tollErr, tollFreeErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		pair.Toll, tollErr = a.fetchRoute(ctx, coords, domain.VariantToll)
	}()

	if !skipTollFree {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pair.TollFree, tollFreeErr = a.fetchRoute(ctx, coords, domain.VariantTollFree)
		}()
	}

	wg.Wait()

	if tollFreeErr != nil {
		a.log().Warn("toll-free route unavailable",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.Error(tollFreeErr),
		)
	}

	switch {
	case pair.Empty():
		reasons := []error{&domain.RouteError{Variant: domain.VariantToll, Err: tollErr}}
		if tollFreeErr != nil {
			reasons = append(reasons, &domain.RouteError{Variant: domain.VariantTollFree, Err: tollFreeErr})
		}
		return pairResult{}, fmt.Errorf("%w: %w", domain.ErrNoRoute, errors.Join(reasons...))
	case tollErr != nil:
		return pairResult{}, &domain.RouteError{
			Variant: domain.VariantToll,
			Err:     fmt.Errorf("%w: %w", domain.ErrPrimaryRoute, tollErr),
		}
	}

	res := pairResult{pair: pair}
	if tollFreeErr != nil {
		res.tollFreeErr = &domain.RouteError{Variant: domain.VariantTollFree, Err: tollFreeErr}
	}
	return res, nil
}

func (a *RouteAggregator) fetchRoute(ctx context.Context, coords []domain.Coordinates, variant domain.RouteVariant) (_ *domain.RouteMetrics, err error) {
	defer obs.Time(ctx, a.log(), "route."+string(variant))(&err)

	if a.Routes == nil {
		return nil, errors.New("no route provider configured")
	}

	route, err := a.Routes.Route(ctx, coords, variant == domain.VariantTollFree)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, errors.New("provider returned no route")
	}
	return route, nil
}
