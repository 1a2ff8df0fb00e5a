package ports

import (
	"context"
	"travel-fare-service/internal/domain"
)

// Port: a boundary for loading and storing vehicle presets as a whole list.
type PresetRepository interface {
	// Retrieve every stored preset, ordered by name.
	LoadAll(ctx context.Context) ([]domain.VehiclePreset, error)
	// Replace the stored list with presets.
	SaveAll(ctx context.Context, presets []domain.VehiclePreset) error
}
