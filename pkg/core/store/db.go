// Package store is the duplicate-aware persistence layer: securities upsert
// by ticker, surveillance snapshots upsert by (deal, date, source), deals
// insert immutably, pricing history appends only.
package store

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

// InitDB opens the connection pool, verifies connectivity and bootstraps
// the schema. Safe to call more than once; only the first call connects.
func InitDB(ctx context.Context) error {
	var err error
	once.Do(func() {
		url := databaseURL()
		if url == "" {
			err = fmt.Errorf("DATABASE_URL environment variable not set")
			return
		}

		cfg, parseErr := pgxpool.ParseConfig(url)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}
		// Ingestion is batch-shaped: short bursts of statements, long idle
		// stretches. Keep idle connections from lingering.
		cfg.MaxConnIdleTime = 5 * time.Minute

		pool, err = pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return
		}
		if err = pool.Ping(ctx); err != nil {
			err = fmt.Errorf("database unreachable: %w", err)
			return
		}
		err = ensureSchema(ctx, pool)
	})
	return err
}

func databaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// GetPool returns the database connection pool, nil before InitDB.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close closes the database connection pool.
func Close() {
	if pool != nil {
		pool.Close()
	}
}
