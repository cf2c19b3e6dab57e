package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jusunglee/hangulize/internal/metrics"
)

// NewPool opens a PostgreSQL pool sized for short history writes.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}

	config.MaxConns = 5
	config.MinConns = 1
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 30 * time.Second
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

// ReportPoolStats exports pool gauges every interval until ctx is done.
func ReportPoolStats(ctx context.Context, pool *pgxpool.Pool, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		stat := pool.Stat()
		metrics.DBPoolTotalConns.Set(float64(stat.TotalConns()))
		metrics.DBPoolIdleConns.Set(float64(stat.IdleConns()))
		metrics.DBPoolAcquiredConns.Set(float64(stat.AcquiredConns()))
		metrics.DBPoolMaxConns.Set(float64(stat.MaxConns()))
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
