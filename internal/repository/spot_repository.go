// Package repository provides database access for the parking spot finder.
//
// Spatial queries use PostGIS functions and the GIST index on
// parking_spots(location) created by pkg/db.Migrate.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiva/spotfinder/internal/model"
)

// ErrSpotNotFound is returned when a spot id does not exist.
var ErrSpotNotFound = errors.New("parking spot not found")

// SpotRepository reads and updates parking spots.
type SpotRepository struct {
	pool *pgxpool.Pool
}

// NewSpotRepository creates a new repository backed by the given PG pool.
func NewSpotRepository(pool *pgxpool.Pool) *SpotRepository {
	return &SpotRepository{pool: pool}
}

const spotColumns = `
	id, available, zone_type,
	ST_Y(location) AS lat, ST_X(location) AS lon,
	street, area`

// FindSpotsNearby returns spots within radiusMeters of origin, closest first.
// With onlyAvailable, occupied spots are excluded before LIMIT applies.
//
// The geography cast makes radiusMeters real meters rather than degrees.
// DistanceM is filled from ST_Distance so callers get the same metric the
// filter used.
//
// Complexity: O(log N) for the GIST index scan + O(K) for the K results.
func (r *SpotRepository) FindSpotsNearby(
	ctx context.Context,
	origin model.Location,
	radiusMeters, limit int,
	onlyAvailable bool,
) ([]model.ParkingSpot, error) {
	query := `
		SELECT` + spotColumns + `,
			ST_Distance(
				location::geography,
				ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography
			) AS distance_m
		FROM parking_spots
		WHERE ST_DWithin(
		        location::geography,
		        ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
		        $3
		      )
		  AND ($5::boolean = false OR available)
		ORDER BY distance_m ASC, id ASC
		LIMIT $4
	`

	rows, err := r.pool.Query(ctx, query,
		origin.Lon, origin.Lat, // ST_MakePoint takes (lon, lat)
		radiusMeters,
		limit,
		onlyAvailable,
	)
	if err != nil {
		return nil, fmt.Errorf("find nearby spots: %w", err)
	}
	defer rows.Close()

	var spots []model.ParkingSpot
	for rows.Next() {
		var (
			s    model.ParkingSpot
			zone string
			dist float64
		)
		if err := rows.Scan(
			&s.ID, &s.Available, &zone,
			&s.Location.Lat, &s.Location.Lon,
			&s.Street, &s.Area,
			&dist,
		); err != nil {
			return nil, fmt.Errorf("scan nearby spot: %w", err)
		}
		s.Type = model.ParseZoneType(zone)
		s.DistanceM = model.Float64(dist)
		spots = append(spots, s)
	}

	return spots, rows.Err()
}

// SpotsOnStreet returns every spot on a street, without distance.
func (r *SpotRepository) SpotsOnStreet(ctx context.Context, street string) ([]model.ParkingSpot, error) {
	query := `SELECT` + spotColumns + `
		FROM parking_spots
		WHERE street = $1
		ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, query, street)
	if err != nil {
		return nil, fmt.Errorf("spots on street %q: %w", street, err)
	}
	defer rows.Close()

	var spots []model.ParkingSpot
	for rows.Next() {
		var (
			s    model.ParkingSpot
			zone string
		)
		if err := rows.Scan(
			&s.ID, &s.Available, &zone,
			&s.Location.Lat, &s.Location.Lon,
			&s.Street, &s.Area,
		); err != nil {
			return nil, fmt.Errorf("scan street spot: %w", err)
		}
		s.Type = model.ParseZoneType(zone)
		spots = append(spots, s)
	}
	return spots, rows.Err()
}

// ListAreas returns all areas with their spot counts.
func (r *SpotRepository) ListAreas(ctx context.Context) ([]model.Area, error) {
	query := `
		SELECT a.name, COUNT(p.id)::int
		FROM areas a
		LEFT JOIN parking_spots p ON p.area = a.name
		GROUP BY a.name
		ORDER BY a.name ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	defer rows.Close()

	var areas []model.Area
	for rows.Next() {
		var a model.Area
		if err := rows.Scan(&a.Name, &a.SpotCount); err != nil {
			return nil, fmt.Errorf("scan area: %w", err)
		}
		areas = append(areas, a)
	}
	return areas, rows.Err()
}

// StreetsInArea returns the distinct street names in an area.
func (r *SpotRepository) StreetsInArea(ctx context.Context, area string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT street
		FROM parking_spots
		WHERE area = $1
		ORDER BY street ASC
	`, area)
	if err != nil {
		return nil, fmt.Errorf("streets in area %q: %w", area, err)
	}
	defer rows.Close()

	var streets []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan street: %w", err)
		}
		streets = append(streets, s)
	}
	return streets, rows.Err()
}

// SetAvailability flips a spot's availability flag and returns its street,
// so the caller can invalidate that street's cached aggregate.
func (r *SpotRepository) SetAvailability(ctx context.Context, id int64, available bool) (string, error) {
	var street string
	err := r.pool.QueryRow(ctx, `
		UPDATE parking_spots
		SET available = $2, updated_at = now()
		WHERE id = $1
		RETURNING street
	`, id, available).Scan(&street)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrSpotNotFound
	}
	if err != nil {
		return "", fmt.Errorf("set spot %d availability: %w", id, err)
	}
	return street, nil
}
