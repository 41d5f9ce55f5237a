package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteWriter mirrors the processed snapshot into a local SQLite file.
type SQLiteWriter struct {
	sqlMirror
}

// NewSQLiteWriter opens (or creates) the database at path and migrates it.
func NewSQLiteWriter(ctx context.Context, path string) (*SQLiteWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("sqlite: create dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	sw := &SQLiteWriter{sqlMirror{
		name: "sqlite",
		db:   db,
		schema: []string{`
			CREATE TABLE IF NOT EXISTS processed_listings (
				position       INTEGER PRIMARY KEY,
				title          TEXT    NOT NULL,
				price          REAL    NOT NULL DEFAULT 0,
				sales          INTEGER NOT NULL DEFAULT 0,
				inquiries      INTEGER NOT NULL DEFAULT 0,
				rating         REAL    NOT NULL DEFAULT 0,
				free_shipping  BOOLEAN NOT NULL DEFAULT 0,
				official_store BOOLEAN NOT NULL DEFAULT 0,
				url            TEXT    NOT NULL DEFAULT '#',
				capture_date   TEXT,
				popularity     REAL    NOT NULL DEFAULT 0
			)`,
		},
		placeholder: func(int) string { return "?" },
	}}
	if err := sw.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return sw, nil
}
