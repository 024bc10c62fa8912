// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/golexhq/golex-data/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Bound every statement server-side so a hung query cannot stall a
	// sync batch indefinitely.
	if cfg.DBStatementTimeout > 0 {
		poolCfg.ConnConfig.RuntimeParams["statement_timeout"] =
			strconv.FormatInt(cfg.DBStatementTimeout.Milliseconds(), 10)
	}

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// preparedStatements returns all statements the API and sync layers use,
// keyed by the name the callers execute them under.
func preparedStatements() map[string]string {
	return map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Sync: team lookups
		"team_by_id": "SELECT id, name, logo_url, country, league_id, founded, venue FROM " + config.TeamsTable + " WHERE id = $1",
		"teams_with_upstream_logo": `
			SELECT id, name, logo_url, country, league_id, founded, venue
			FROM ` + config.TeamsTable + `
			WHERE logo_url LIKE $1 || '%'
			ORDER BY id
			LIMIT $2`,

		// Sync: logo promotion
		"update_team_logo": "UPDATE " + config.TeamsTable + " SET logo_url = $2, updated_at = NOW() WHERE id = $1",
	}
}

// registerPreparedStatements registers all statements on a new connection.
// Prepared statements eliminate parse overhead on every request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	for name, sql := range preparedStatements() {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
