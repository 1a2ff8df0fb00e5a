package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"travel-fare-service/internal/domain"
)

// SQLite-backed implementation of the PresetRepository port.
type SqlitePresetRepository struct{ DB *sql.DB }

func NewSqlitePresetRepository(db *sql.DB) *SqlitePresetRepository {
	return &SqlitePresetRepository{DB: db}
}

// Return all presets stored in the database.
func (s *SqlitePresetRepository) LoadAll(ctx context.Context) ([]domain.VehiclePreset, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite preset repository: DB is nil")
	}
	return loadPresets(ctx, s.DB)
}

// Replace the stored presets with presets.
func (s *SqlitePresetRepository) SaveAll(ctx context.Context, presets []domain.VehiclePreset) error {
	if s.DB == nil {
		return errors.New("sqlite preset repository: DB is nil")
	}

	return savePresets(ctx, s.DB, presets, `
	INSERT INTO vehicle_presets (
		id,
		name,
		fuel_consumption,
		passengers
	)
	VALUES (?, ?, ?, ?);
	`)
}

func loadPresets(ctx context.Context, db *sql.DB) ([]domain.VehiclePreset, error) {
	query := `
	SELECT
		id,
		name,
		fuel_consumption,
		passengers
	FROM vehicle_presets
	ORDER BY name, id;
	`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load presets: query vehicle_presets table: %w", err)
	}
	defer rows.Close()

	presets := make([]domain.VehiclePreset, 0, 16)
	for rows.Next() {
		var p domain.VehiclePreset
		if err := rows.Scan(&p.ID, &p.Name, &p.FuelConsumption, &p.Passengers); err != nil {
			return nil, fmt.Errorf("load presets: scan row: %w", err)
		}
		presets = append(presets, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load presets: row iteration: %w", err)
	}

	return presets, nil
}

// savePresets replaces the table contents in one transaction.
func savePresets(ctx context.Context, db *sql.DB, presets []domain.VehiclePreset, insert string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save presets: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM vehicle_presets;`); err != nil {
		return fmt.Errorf("save presets: clear table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("save presets: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range presets {
		if _, err := stmt.ExecContext(ctx, p.ID, p.Name, p.FuelConsumption, p.Passengers); err != nil {
			return fmt.Errorf("save presets: insert id=%q: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save presets: commit tx: %w", err)
	}

	return nil
}
