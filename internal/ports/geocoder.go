package ports

import (
	"context"
	"travel-fare-service/internal/domain"
)

// Contract for resolving a free-text place name to coordinates.
type Geocoder interface {
	// Return the best match for name. Fails with domain.ErrLocationNotFound
	// when there is no match and domain.ErrLookupFailed on provider failure.
	Geocode(ctx context.Context, name string) (domain.Coordinates, error)
}

// Key-value store for resolved names. Keys are trimmed names, matched
// exactly (case-sensitive). Implementations must be safe for concurrent use.
type GeocodeCache interface {
	// Return cached coordinates for the names found; misses are absent from the map.
	GetMany(ctx context.Context, names []string) (map[string]domain.Coordinates, error)
	// Store name -> coordinate mappings.
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
