// Package index provides the Bleve-backed full-text index for records.
package index

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/fieldstone/quarry/internal/models"
)

// Hit is a single index match: the record ID and the engine's relevance score.
type Hit struct {
	ID    string
	Score float64
}

// Index defines the full-text index operations the rest of the system uses.
type Index interface {
	Index(ctx context.Context, rec *models.Record) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q blevequery.Query, size, from int) ([]Hit, uint64, error)
	Count(ctx context.Context, q blevequery.Query) (uint64, error)
	DocCount() (uint64, error)
	Purge() error
	Close() error
}

// BleveIndex implements Index using Bleve.
type BleveIndex struct {
	path  string
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path.
// If the path already exists, the existing index is opened and reused.
// If you change the index mapping in code, remove the index directory to force a rebuild.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if _, err := os.Stat(path); err == nil {
		idx, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{path: path, index: idx}, nil
	}

	idx, err := bleve.New(path, buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{path: path, index: idx}, nil
}

// buildIndexMapping maps record fields as standard-analyzed text and the kind
// discriminator as an untokenized keyword. Record fields vary per kind, so the
// default (dynamic) mapping handles them.
// Standard analyzer (lowercase + tokenize, no stemming) keeps exact words matchable.
func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	docMapping := bleve.NewDocumentMapping()
	kindFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("kind", kindFieldMapping)
	im.DefaultMapping = docMapping
	return im
}

// Index indexes a record under its ID. The kind discriminator is indexed
// alongside the record's fields so queries can be scoped to one kind.
func (b *BleveIndex) Index(ctx context.Context, rec *models.Record) error {
	doc := make(map[string]interface{}, len(rec.Fields)+1)
	for k, v := range rec.Fields {
		doc[k] = v
	}
	doc["kind"] = rec.Kind
	return b.index.Index(rec.ID, doc)
}

// Delete removes a record from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// Search executes q and returns up to size hits starting at offset from,
// plus the total number of matches.
func (b *BleveIndex) Search(ctx context.Context, q blevequery.Query, size, from int) ([]Hit, uint64, error) {
	req := bleve.NewSearchRequestOptions(q, size, from, false)
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, 0, fmt.Errorf("Bleve search failed: %w", err)
	}
	hits := make([]Hit, len(res.Hits))
	for i, hit := range res.Hits {
		hits[i] = Hit{ID: hit.ID, Score: hit.Score}
	}
	return hits, res.Total, nil
}

// Count executes q and returns only the total number of matches.
func (b *BleveIndex) Count(ctx context.Context, q blevequery.Query) (uint64, error) {
	req := bleve.NewSearchRequestOptions(q, 0, 0, false)
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("Bleve count failed: %w", err)
	}
	return res.Total, nil
}

// DocCount returns the total number of indexed records.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Purge destroys the index contents and recreates an empty index at the same path.
// Used by the administrative rebuild before re-indexing from storage.
func (b *BleveIndex) Purge() error {
	if err := b.index.Close(); err != nil {
		return fmt.Errorf("failed to close index for purge: %w", err)
	}
	if err := os.RemoveAll(b.path); err != nil {
		return fmt.Errorf("failed to remove index directory: %w", err)
	}
	idx, err := bleve.New(b.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("failed to recreate Bleve index: %w", err)
	}
	b.index = idx
	return nil
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
