// Package indexer writes records into storage and the full-text index,
// and provides the administrative full rebuild.
package indexer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fieldstone/quarry/internal/config"
	"github.com/fieldstone/quarry/internal/index"
	"github.com/fieldstone/quarry/internal/models"
	"github.com/fieldstone/quarry/internal/schema"
	"github.com/fieldstone/quarry/internal/storage"
)

// Indexer persists records and keeps the full-text index in sync.
type Indexer struct {
	store    storage.Store
	index    index.Index
	registry *schema.Registry
	config   *config.SearchConfig
	logger   *zap.Logger // optional; when set, logs debug events
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger sets a logger for progress and debug output.
func WithLogger(l *zap.Logger) Option {
	return func(idx *Indexer) { idx.logger = l }
}

// NewIndexer creates an indexer with the given dependencies.
func NewIndexer(store storage.Store, idx index.Index, registry *schema.Registry, cfg *config.SearchConfig, opts ...Option) *Indexer {
	in := &Indexer{
		store:    store,
		index:    idx,
		registry: registry,
		config:   cfg,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// IndexRecord stores a record and indexes its searchable fields.
// A missing ID is assigned; a caller-supplied ID that already exists replaces
// the stored record. Fields outside the kind's allowed set are persisted but
// not indexed.
func (in *Indexer) IndexRecord(ctx context.Context, input *models.RecordInput) error {
	if !in.registry.Has(input.Kind) {
		return fmt.Errorf("unknown kind: %s", input.Kind)
	}
	assigned := input.ID == ""
	if assigned {
		input.ID = uuid.New().String()
	}
	rec := &models.Record{
		ID:     input.ID,
		Kind:   input.Kind,
		Fields: input.Fields,
	}
	if err := in.persist(ctx, rec, assigned); err != nil {
		return fmt.Errorf("failed to store record: %w", err)
	}
	if err := in.index.Index(ctx, in.indexable(rec)); err != nil {
		return fmt.Errorf("failed to index record: %w", err)
	}
	if in.logger != nil {
		in.logger.Debug("record indexed", zap.String("id", rec.ID), zap.String("kind", rec.Kind))
	}
	return nil
}

// persist creates the record, or updates it when the caller supplied an ID
// that is already stored.
func (in *Indexer) persist(ctx context.Context, rec *models.Record, assigned bool) error {
	if !assigned {
		if _, err := in.store.GetRecord(ctx, rec.ID); err == nil {
			return in.store.UpdateRecord(ctx, rec)
		}
	}
	return in.store.CreateRecord(ctx, rec)
}

// DeleteRecord removes a record from storage and the index.
func (in *Indexer) DeleteRecord(ctx context.Context, id string) error {
	if err := in.store.DeleteRecord(ctx, id); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if err := in.index.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to remove record from index: %w", err)
	}
	if in.logger != nil {
		in.logger.Debug("record deleted", zap.String("id", id))
	}
	return nil
}

// Rebuild purges the index and re-indexes every stored record, reading from
// store in batches. Progress is logged every config.ReindexLogEvery records.
// Fields no longer allowed by the registry are dropped from the index.
func (in *Indexer) Rebuild(ctx context.Context, store storage.Store) (int64, error) {
	if in.logger != nil {
		in.logger.Info("rebuilding search index")
	}
	if err := in.index.Purge(); err != nil {
		return 0, fmt.Errorf("failed to purge index: %w", err)
	}

	batchSize := in.config.ReindexBatchSize
	logEvery := in.config.ReindexLogEvery
	var indexed int64
	for offset := 0; ; offset += batchSize {
		if err := ctx.Err(); err != nil {
			return indexed, err
		}
		records, err := store.ListRecords(ctx, offset, batchSize)
		if err != nil {
			return indexed, fmt.Errorf("failed to list records: %w", err)
		}
		if len(records) == 0 {
			break
		}
		for _, rec := range records {
			if err := in.index.Index(ctx, in.indexable(rec)); err != nil {
				return indexed, fmt.Errorf("failed to index record %s: %w", rec.ID, err)
			}
			indexed++
			if in.logger != nil && logEvery > 0 && indexed%int64(logEvery) == 0 {
				in.logger.Info("rebuild progress", zap.Int64("indexed", indexed))
			}
		}
	}

	if in.logger != nil {
		in.logger.Info("rebuild complete", zap.Int64("indexed", indexed))
	}
	return indexed, nil
}

// indexable returns a copy of rec restricted to the kind's allowed fields,
// so unregistered fields never leak into the index.
func (in *Indexer) indexable(rec *models.Record) *models.Record {
	allowed := make(map[string]string, len(rec.Fields))
	for name, value := range rec.Fields {
		if in.registry.Allowed(rec.Kind, name) {
			allowed[name] = value
		}
	}
	out := *rec
	out.Fields = allowed
	return &out
}
