package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/lib/pq"
)

// PostgresWriter mirrors the processed snapshot into PostgreSQL.
type PostgresWriter struct {
	sqlMirror
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(ctx context.Context, dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("postgres: ping: %w", ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{sqlMirror{
		name: "postgres",
		db:   db,
		schema: []string{`
			CREATE TABLE IF NOT EXISTS processed_listings (
				position       INTEGER       PRIMARY KEY,
				title          TEXT          NOT NULL,
				price          NUMERIC(12,2) NOT NULL DEFAULT 0,
				sales          INTEGER       NOT NULL DEFAULT 0,
				inquiries      INTEGER       NOT NULL DEFAULT 0,
				rating         NUMERIC(4,2)  NOT NULL DEFAULT 0,
				free_shipping  BOOLEAN       NOT NULL DEFAULT FALSE,
				official_store BOOLEAN       NOT NULL DEFAULT FALSE,
				url            TEXT          NOT NULL DEFAULT '#',
				capture_date   TEXT,
				popularity     DOUBLE PRECISION NOT NULL DEFAULT 0
			)`,
		},
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	}}
	if err := pw.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return pw, nil
}
