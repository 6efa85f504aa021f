package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements create the tables the spot finder reads. Every statement
// is idempotent so Migrate can run on each boot.
var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis`,

	`CREATE TABLE IF NOT EXISTS areas (
		name TEXT PRIMARY KEY
	)`,

	`CREATE TABLE IF NOT EXISTS parking_spots (
		id         BIGSERIAL PRIMARY KEY,
		available  BOOLEAN   NOT NULL DEFAULT TRUE,
		zone_type  TEXT      NOT NULL,
		location   GEOMETRY(Point, 4326) NOT NULL,
		street     TEXT      NOT NULL,
		area       TEXT      NOT NULL REFERENCES areas(name),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_parking_spots_location_gist
		ON parking_spots USING GIST (location)`,

	`CREATE INDEX IF NOT EXISTS idx_parking_spots_street
		ON parking_spots (street)`,

	`CREATE INDEX IF NOT EXISTS idx_parking_spots_area_street
		ON parking_spots (area, street)`,
}

// Migrate applies the schema. Safe to call repeatedly.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
