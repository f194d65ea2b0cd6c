package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/resale-geojoin/internal/resilience"
)

// postgisPool connects to postgis.database_url, retrying while the server
// is unreachable.
func postgisPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, eris.Wrap(err, "postgis: parse connection string")
	}
	poolCfg.MaxConns = 4
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgis: create connection pool")
	}

	err = resilience.Do(ctx, resilience.RetryConfig{OnRetry: resilience.RetryLogger("postgis ping")}, pool.Ping)
	if err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgis: ping database")
	}
	return pool, nil
}
