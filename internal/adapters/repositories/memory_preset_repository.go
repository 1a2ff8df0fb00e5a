package repositories

import (
	"context"
	"slices"
	"sync"
	"travel-fare-service/internal/domain"
)

// MemoryPresetRepository keeps presets in process memory (DB_PATH=memory).
type MemoryPresetRepository struct {
	mu      sync.Mutex
	presets []domain.VehiclePreset
}

func NewMemoryPresetRepository(initial ...domain.VehiclePreset) *MemoryPresetRepository {
	return &MemoryPresetRepository{presets: slices.Clone(initial)}
}

func (r *MemoryPresetRepository) LoadAll(ctx context.Context) ([]domain.VehiclePreset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.presets), nil
}

func (r *MemoryPresetRepository) SaveAll(ctx context.Context, presets []domain.VehiclePreset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presets = slices.Clone(presets)
	return nil
}
