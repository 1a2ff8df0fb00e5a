package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"travel-fare-service/internal/domain"
	"travel-fare-service/internal/ports"
)

type PresetSeed struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	FuelConsumption float64 `json:"fuel_consumption"`
	Passengers      int     `json:"passengers"`
}

// SeedPresetsFromJSON upserts the presets listed in a JSON file. Presets
// already stored under other ids are kept.
func SeedPresetsFromJSON(ctx context.Context, repo ports.PresetRepository, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed presets: read %q: %w", jsonPath, err)
	}

	var data []PresetSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed presets: parse json: %w", err)
	}

	seeds := make([]domain.VehiclePreset, 0, len(data))
	for i, item := range data {
		p := domain.VehiclePreset{
			ID:              strings.TrimSpace(item.ID),
			Name:            strings.TrimSpace(item.Name),
			FuelConsumption: item.FuelConsumption,
			Passengers:      item.Passengers,
		}
		if p.ID == "" {
			return 0, fmt.Errorf("seed presets: item at index %d: id cannot be empty", i+1)
		}
		if err := p.Validate(); err != nil {
			return 0, fmt.Errorf("seed presets: item at index %d: %w", i+1, err)
		}
		seeds = append(seeds, p)
	}

	existing, err := repo.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed presets: %w", err)
	}

	byID := make(map[string]int, len(existing))
	for i, p := range existing {
		byID[p.ID] = i
	}
	for _, s := range seeds {
		if i, ok := byID[s.ID]; ok {
			existing[i] = s
			continue
		}
		byID[s.ID] = len(existing)
		existing = append(existing, s)
	}

	if err := repo.SaveAll(ctx, existing); err != nil {
		return 0, fmt.Errorf("seed presets: %w", err)
	}

	return len(seeds), nil
}
