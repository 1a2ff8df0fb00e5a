package repositories

import (
	"context"
	"database/sql"
	"errors"
	"travel-fare-service/internal/domain"
)

// Postgres-backed implementation of the PresetRepository port.
type PostgresPresetRepository struct{ DB *sql.DB }

func NewPostgresPresetRepository(db *sql.DB) *PostgresPresetRepository {
	return &PostgresPresetRepository{DB: db}
}

func (s *PostgresPresetRepository) LoadAll(ctx context.Context) ([]domain.VehiclePreset, error) {
	if s.DB == nil {
		return nil, errors.New("postgres preset repository: DB is nil")
	}
	return loadPresets(ctx, s.DB)
}

func (s *PostgresPresetRepository) SaveAll(ctx context.Context, presets []domain.VehiclePreset) error {
	if s.DB == nil {
		return errors.New("postgres preset repository: DB is nil")
	}

	return savePresets(ctx, s.DB, presets, `
	INSERT INTO vehicle_presets (id, name, fuel_consumption, passengers)
	VALUES ($1, $2, $3, $4);
	`)
}
