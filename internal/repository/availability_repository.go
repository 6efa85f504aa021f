package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/shiva/spotfinder/internal/model"
	"github.com/shiva/spotfinder/pkg/cache"
)

// AvailabilityRepository serves per-street availability aggregates.
type AvailabilityRepository struct {
	pool  *pgxpool.Pool
	redis *redis.Client
	ttl   time.Duration
}

// NewAvailabilityRepository creates a new availability repository.
// A zero ttl disables caching writes (reads still consult Redis).
func NewAvailabilityRepository(pool *pgxpool.Pool, redis *redis.Client, ttl time.Duration) *AvailabilityRepository {
	return &AvailabilityRepository{pool: pool, redis: redis, ttl: ttl}
}

// ─── Redis-backed fast path ─────────────────────────────────

const redisStreetKeyPrefix = "avail:street:"

func streetKey(street string) string {
	return redisStreetKeyPrefix + street
}

// GetStreetAvailability returns aggregates keyed by street name.
//
// Strategy:
//  1. MGET every street from Redis in one round trip.
//  2. Query PostgreSQL once for all misses (GROUP BY street), then cache.
//
// Streets with no spots in the database are absent from the result. Redis
// failures degrade to the database path; only a database failure is an error.
func (r *AvailabilityRepository) GetStreetAvailability(
	ctx context.Context,
	streets []string,
) (map[string]model.StreetAvailability, error) {
	result := make(map[string]model.StreetAvailability, len(streets))
	if len(streets) == 0 {
		return result, nil
	}

	keys := make([]string, len(streets))
	for i, s := range streets {
		keys[i] = streetKey(s)
	}

	cached, err := cache.MGetJSON[model.StreetAvailability](ctx, r.redis, keys)
	if err != nil {
		log.Printf("[availability] WARNING: cache read failed: %v — falling back to postgres", err)
		cached = nil
	}

	var missing []string
	for i, s := range streets {
		if agg, ok := cached[keys[i]]; ok {
			result[s] = agg
			continue
		}
		missing = append(missing, s)
	}

	if len(missing) == 0 {
		return result, nil
	}

	// ── Slow path: one aggregate query for all misses ───
	fresh, err := r.queryAggregates(ctx, missing)
	if err != nil {
		return nil, err
	}

	pipe := r.redis.Pipeline()
	for street, agg := range fresh {
		result[street] = agg
		if r.ttl > 0 {
			_ = cache.SetJSON(ctx, pipe, streetKey(street), agg, r.ttl)
		}
	}
	// Fire-and-forget: a failed cache write only costs a future miss.
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		log.Printf("[availability] WARNING: cache write failed: %v", err)
	}

	return result, nil
}

// queryAggregates counts total and available spots per street, split by zone.
func (r *AvailabilityRepository) queryAggregates(
	ctx context.Context,
	streets []string,
) (map[string]model.StreetAvailability, error) {
	query := `
		SELECT
			street,
			COUNT(*)::int                                                          AS total,
			COUNT(*) FILTER (WHERE available)::int                                 AS available,
			COUNT(*) FILTER (WHERE available AND lower(zone_type) = 'green')::int  AS green,
			COUNT(*) FILTER (WHERE available AND lower(zone_type) = 'yellow')::int AS yellow,
			COUNT(*) FILTER (WHERE available AND lower(zone_type) = 'red')::int    AS red
		FROM parking_spots
		WHERE street = ANY($1)
		GROUP BY street
	`

	rows, err := r.pool.Query(ctx, query, streets)
	if err != nil {
		return nil, fmt.Errorf("query street availability: %w", err)
	}
	defer rows.Close()

	out := make(map[string]model.StreetAvailability, len(streets))
	for rows.Next() {
		var a model.StreetAvailability
		if err := rows.Scan(&a.Street, &a.Total, &a.Available, &a.Green, &a.Yellow, &a.Red); err != nil {
			return nil, fmt.Errorf("scan street availability: %w", err)
		}
		out[a.Street] = a
	}
	return out, rows.Err()
}

// InvalidateStreet clears the cached aggregate for a street.
// Call this after a spot on the street changes availability. A failed delete
// leaves stale counts in Redis until the TTL expires.
func (r *AvailabilityRepository) InvalidateStreet(ctx context.Context, street string) {
	if err := r.redis.Del(ctx, streetKey(street)).Err(); err != nil {
		log.Printf("[availability] WARNING: cache invalidation for street %q failed: %v (stale for up to %s)",
			street, err, r.ttl)
	}
}
