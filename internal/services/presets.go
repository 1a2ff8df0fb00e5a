package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"travel-fare-service/internal/domain"
	"travel-fare-service/internal/ports"

	"github.com/google/uuid"
)

// PresetService manages vehicle presets on top of a load-all/save-all
// repository. Read-modify-write cycles are serialized.
type PresetService struct {
	Repo ports.PresetRepository

	mu sync.Mutex
}

func NewPresetService(repo ports.PresetRepository) *PresetService {
	return &PresetService{Repo: repo}
}

// List returns all presets ordered by name.
func (s *PresetService) List(ctx context.Context) ([]domain.VehiclePreset, error) {
	if s.Repo == nil {
		return nil, errors.New("list presets: repository is nil")
	}

	presets, err := s.Repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}

	slices.SortStableFunc(presets, func(a, b domain.VehiclePreset) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return presets, nil
}

// Get returns the preset with the given id or domain.ErrPresetNotFound.
func (s *PresetService) Get(ctx context.Context, id string) (domain.VehiclePreset, error) {
	presets, err := s.List(ctx)
	if err != nil {
		return domain.VehiclePreset{}, err
	}

	for _, p := range presets {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.VehiclePreset{}, fmt.Errorf("get preset %q: %w", id, domain.ErrPresetNotFound)
}

// Save inserts p, or replaces the stored preset with the same id. A preset
// without id gets a fresh one.
func (s *PresetService) Save(ctx context.Context, p domain.VehiclePreset) (domain.VehiclePreset, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return domain.VehiclePreset{}, fmt.Errorf("save preset: %w", err)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	presets, err := s.Repo.LoadAll(ctx)
	if err != nil {
		return domain.VehiclePreset{}, fmt.Errorf("save preset: load: %w", err)
	}

	idx := slices.IndexFunc(presets, func(e domain.VehiclePreset) bool { return e.ID == p.ID })
	if idx >= 0 {
		presets[idx] = p
	} else {
		presets = append(presets, p)
	}

	if err := s.Repo.SaveAll(ctx, presets); err != nil {
		return domain.VehiclePreset{}, fmt.Errorf("save preset %q: %w", p.ID, err)
	}
	return p, nil
}

// Delete removes the preset with the given id.
func (s *PresetService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	presets, err := s.Repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("delete preset: load: %w", err)
	}

	kept := slices.DeleteFunc(presets, func(e domain.VehiclePreset) bool { return e.ID == id })
	if len(kept) == len(presets) {
		return fmt.Errorf("delete preset %q: %w", id, domain.ErrPresetNotFound)
	}

	if err := s.Repo.SaveAll(ctx, kept); err != nil {
		return fmt.Errorf("delete preset %q: %w", id, err)
	}
	return nil
}
