package ports

import (
	"context"
	"travel-fare-service/internal/domain"
)

// Contract for retrieving pairwise travel costs between coordinates.
type CostMatrixProvider interface {
	// Return an N×N matrix aligned with coords. Fails for fewer than two coordinates.
	CostMatrix(ctx context.Context, coords []domain.Coordinates, metric domain.Metric) (domain.CostMatrix, error)
}

// Contract for retrieving one driving route through coordinates in order.
type RouteProvider interface {
	// Return the route's aggregate metrics. Fails for fewer than two
	// coordinates or when the provider finds no route.
	Route(ctx context.Context, coords []domain.Coordinates, avoidTolls bool) (*domain.RouteMetrics, error)
}
