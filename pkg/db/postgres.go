package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiva/spotfinder/config"
)

const (
	// applicationName tags our sessions in pg_stat_activity.
	applicationName = "spotfinder"

	// statementTimeout bounds any single query. A nearby search is one
	// GIST-indexed ST_DWithin scan and, on a cache miss, one GROUP BY over
	// the candidate streets; both finish in milliseconds when healthy.
	statementTimeout = 3 * time.Second
)

// NewPostgresPool creates the PostGIS connection pool.
//
// A search holds a connection for at most two short statements, and
// availability updates are single-row UPDATEs, so a small pool serves a
// lot of traffic:
//   - MaxConns / MinConns from POSTGRES_MAX_CONNS / POSTGRES_MIN_CONNS
//     (defaults 20 / 2)
//   - idle connections are released after 5 min, all are recycled after 30 min
//   - every session runs with statement_timeout = 3 s
func NewPostgresPool(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	poolCfg.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprint(statementTimeout.Milliseconds())

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, poolCfg.ConnConfig.ConnectTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.DBName, err)
	}

	return pool, nil
}

// HealthCheck pings the pool; /health reports "down" when it fails.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return pool.Ping(pingCtx)
}
