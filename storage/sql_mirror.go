package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"meli-trends/models"
)

const mirrorBatchSize = 50

// sqlMirror holds the SQL shared by the Postgres and SQLite mirrors; the
// backends differ only in driver, DDL types and placeholder syntax.
type sqlMirror struct {
	name        string
	db          *sql.DB
	schema      []string
	placeholder func(n int) string
}

func (m *sqlMirror) migrate(ctx context.Context) error {
	for _, stmt := range m.schema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: migrate: %w", m.name, err)
		}
	}
	return nil
}

// Replace deletes the previous snapshot and inserts the new one in a single
// transaction.
func (m *sqlMirror) Replace(ctx context.Context, listings []*models.Listing) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", m.name, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM processed_listings"); err != nil {
		return fmt.Errorf("%s: clear: %w", m.name, err)
	}

	for i := 0; i < len(listings); i += mirrorBatchSize {
		end := i + mirrorBatchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := m.insertBatch(ctx, tx, i, listings[i:end]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", m.name, err)
	}
	return nil
}

func (m *sqlMirror) insertBatch(ctx context.Context, tx *sql.Tx, offset int, batch []*models.Listing) error {
	const cols = 11
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*cols)

	for idx, l := range batch {
		base := idx * cols
		ph := make([]string, cols)
		for c := range ph {
			ph[c] = m.placeholder(base + c + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")

		var date any
		if !l.CaptureDate.IsZero() {
			date = l.CaptureDate.Format(models.DateLayout)
		}
		valueArgs = append(valueArgs,
			offset+idx+1, l.Title, l.Price, l.SalesCount, l.InquiryCount, l.Rating,
			l.FreeShipping, l.OfficialStore, l.URL, date, l.PopularityScore)
	}

	query := fmt.Sprintf(`
		INSERT INTO processed_listings
			(position, title, price, sales, inquiries, rating, free_shipping, official_store, url, capture_date, popularity)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	if _, err := tx.ExecContext(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("%s: insert: %w", m.name, err)
	}
	return nil
}

// FetchAll returns the mirrored snapshot in rank order.
func (m *sqlMirror) FetchAll(ctx context.Context) ([]*models.Listing, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT title, price, sales, inquiries, rating, free_shipping, official_store, url,
		       COALESCE(capture_date, ''), popularity
		FROM processed_listings
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch all: %w", m.name, err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l := &models.Listing{ClusterID: -1}
		var date string
		if err := rows.Scan(
			&l.Title, &l.Price, &l.SalesCount, &l.InquiryCount, &l.Rating,
			&l.FreeShipping, &l.OfficialStore, &l.URL, &date, &l.PopularityScore,
		); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", m.name, err)
		}
		if date != "" {
			if l.CaptureDate, err = parseDate(date); err != nil {
				return nil, fmt.Errorf("%s: scan row: %w", m.name, err)
			}
		}
		l.Index = len(listings)
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (m *sqlMirror) Close() error {
	return m.db.Close()
}
