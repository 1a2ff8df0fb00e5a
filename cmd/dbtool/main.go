package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"time"
	"travel-fare-service/internal/adapters/repositories"
	"travel-fare-service/internal/config"
	"travel-fare-service/internal/platform/db"
	"travel-fare-service/internal/platform/obs"
	"travel-fare-service/internal/ports"

	"go.uber.org/zap"
)

// dbtool initializes the schema and seeds vehicle presets, for Postgres
// (DATABASE_URL) or SQLite (DB_PATH).
func main() {
	seedPath := flag.String("seed", "", "presets JSON file (default PRESET_SEED_PATH or data/seeds/presets.json)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := obs.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync() //nolint:errcheck

	path := *seedPath
	if path == "" {
		path = cfg.PresetSeedPath
	}
	if path == "" {
		path = "data/seeds/presets.json"
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := initAndSeed(ctx, cfg, path, logger); err != nil {
		logger.Fatal("dbtool failed", zap.Error(err))
	}
}

func initAndSeed(ctx context.Context, cfg *config.Config, seedPath string, logger *zap.Logger) error {
	var (
		conn *sql.DB
		repo ports.PresetRepository
		err  error
	)

	if cfg.DatabaseURL == "" && cfg.DBPath == config.MemoryDBPath {
		return fmt.Errorf("DB_PATH=%s has no schema to initialize", config.MemoryDBPath)
	}

	logger.Info("initializing database schema")
	if cfg.DatabaseURL != "" {
		if conn, err = db.OpenPostgres(ctx, cfg.DatabaseURL); err != nil {
			return err
		}
		defer conn.Close()
		if err := repositories.InitPostgresSchema(ctx, conn); err != nil {
			return fmt.Errorf("schema initialization failed: %w", err)
		}
		repo = repositories.NewPostgresPresetRepository(conn)
	} else {
		if conn, err = db.OpenSQLite(ctx, cfg.DBPath); err != nil {
			return err
		}
		defer conn.Close()
		if err := repositories.InitSqliteSchema(ctx, conn); err != nil {
			return fmt.Errorf("schema initialization failed: %w", err)
		}
		repo = repositories.NewSqlitePresetRepository(conn)
	}
	logger.Info("schema ready")

	n, err := repositories.SeedPresetsFromJSON(ctx, repo, seedPath)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	logger.Info("seeding complete", zap.Int("presets", n), zap.String("path", seedPath))
	return nil
}
