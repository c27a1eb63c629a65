package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Create the shared geocode cache table on Postgres.
func InitPostgresSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init postgres schema: DB is nil")
	}

	_, err := db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`)
	if err != nil {
		return fmt.Errorf("init postgres schema: create geocode_cache: %w", err)
	}
	return nil
}
