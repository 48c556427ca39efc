// Package store persists workflow artifacts as JSONB documents in Postgres.
// The API degrades gracefully when no database is configured.
package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

const schema = `
CREATE TABLE IF NOT EXISTS underwriting_documents (
	id            TEXT PRIMARY KEY,
	application_id TEXT NOT NULL,
	document_type TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	document      JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_underwriting_documents_app
	ON underwriting_documents (application_id, document_type, created_at DESC);
`

// InitDB initializes the connection pool from DATABASE_URL and ensures the
// document table exists.
func InitDB(ctx context.Context) error {
	var err error
	once.Do(func() {
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			err = fmt.Errorf("DATABASE_URL environment variable not set")
			return
		}

		config, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			return
		}
		_, err = pool.Exec(ctx, schema)
	})
	return err
}

// GetPool returns the database connection pool, or nil when uninitialized.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close closes the database connection pool.
func Close() {
	if pool != nil {
		pool.Close()
	}
}
