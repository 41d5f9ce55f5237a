package storage

import (
	"context"

	"meli-trends/models"
)

// SnapshotMirror keeps a database copy of the processed snapshot. Replace
// swaps the whole table contents in one transaction.
type SnapshotMirror interface {
	Replace(ctx context.Context, listings []*models.Listing) error
	Close() error
}
