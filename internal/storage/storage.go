// Package storage defines the persistence interface for inventory records.
package storage

import (
	"context"

	"github.com/fieldstone/quarry/internal/models"
)

// Store defines record persistence operations.
type Store interface {
	CreateRecord(ctx context.Context, rec *models.Record) error
	GetRecord(ctx context.Context, id string) (*models.Record, error)
	// GetRecords returns the records for the given IDs, in the given order.
	// IDs with no matching record are skipped.
	GetRecords(ctx context.Context, ids []string) ([]*models.Record, error)
	UpdateRecord(ctx context.Context, rec *models.Record) error
	DeleteRecord(ctx context.Context, id string) error
	ListRecords(ctx context.Context, offset, limit int) ([]*models.Record, error)
	ListRecordsByKind(ctx context.Context, kind string, offset, limit int) ([]*models.Record, error)
	CountRecords(ctx context.Context) (int64, error)
	Close() error
}
