// Package db builds the pgx connection pool shared by every service.
package db

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool connects using DATABASE_URL and verifies the connection with a
// bounded ping. DB_MAX_CONNS optionally caps the pool size; pgx's default is
// plenty for the console, the HTTP server may want more.
func NewPool(ctx context.Context) (*pgxpool.Pool, error) {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse DATABASE_URL: %w", err)
	}

	if raw := os.Getenv("DB_MAX_CONNS"); raw != "" {
		maxConns, err := strconv.Atoi(raw)
		if err != nil || maxConns < 1 {
			return nil, fmt.Errorf("invalid DB_MAX_CONNS %q", raw)
		}
		config.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}
