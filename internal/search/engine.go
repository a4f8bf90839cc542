// Package search translates record queries into Bleve queries and maps the
// hits back to persisted records. Tokenization, ranking, and storage are the
// engine's and the store's job; this package only shapes queries.
package search

import (
	"context"
	"fmt"
	"time"

	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/fieldstone/quarry/internal/config"
	"github.com/fieldstone/quarry/internal/index"
	"github.com/fieldstone/quarry/internal/models"
	"github.com/fieldstone/quarry/internal/schema"
	"github.com/fieldstone/quarry/internal/storage"
)

// Engine executes record searches against the index and resolves hits from storage.
type Engine struct {
	index    index.Index
	store    storage.Store
	registry *schema.Registry
	config   *config.SearchConfig
}

// NewEngine creates a search engine with the given dependencies.
func NewEngine(idx index.Index, store storage.Store, registry *schema.Registry, cfg *config.SearchConfig) *Engine {
	return &Engine{
		index:    idx,
		store:    store,
		registry: registry,
		config:   cfg,
	}
}

// Search executes the query and returns the matching records.
// An empty term yields an empty result set without touching the index.
func (e *Engine) Search(ctx context.Context, q models.Query) ([]*models.Record, error) {
	bq, err := e.prepare(&q)
	if err != nil {
		return nil, err
	}
	if bq == nil {
		return []*models.Record{}, nil
	}

	size, from := e.window(&q)
	hits, _, err := e.index.Search(ctx, bq, size, from)
	if err != nil {
		return nil, err
	}
	return e.resolve(ctx, hits)
}

// SearchScored executes the query and returns records with relevance metadata
// (score and rank) plus the total match count.
func (e *Engine) SearchScored(ctx context.Context, q models.Query) (*models.Response, error) {
	startTime := time.Now()
	bq, err := e.prepare(&q)
	if err != nil {
		return nil, err
	}
	response := &models.Response{
		Results: []*models.Result{},
		Term:    q.Term,
	}
	if bq == nil {
		response.Took = time.Since(startTime).Milliseconds()
		return response, nil
	}

	size, from := e.window(&q)
	hits, total, err := e.index.Search(ctx, bq, size, from)
	if err != nil {
		return nil, err
	}
	response.Total = total

	ids := make([]string, len(hits))
	scores := make(map[string]float64, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
		scores[h.ID] = h.Score
	}
	records, err := e.store.GetRecords(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	for i, rec := range records {
		response.Results = append(response.Results, &models.Result{
			Record: rec,
			Score:  scores[rec.ID],
			Rank:   from + i + 1,
		})
	}
	response.Took = time.Since(startTime).Milliseconds()
	return response, nil
}

// Count executes the query and returns only the total match count.
// An empty term yields zero without touching the index.
func (e *Engine) Count(ctx context.Context, q models.Query) (uint64, error) {
	bq, err := e.prepare(&q)
	if err != nil {
		return 0, err
	}
	if bq == nil {
		return 0, nil
	}
	return e.index.Count(ctx, bq)
}

// prepare validates the query, resolves its field list against the kind
// registry, normalizes the term, and builds the Bleve query. A nil query with
// nil error means there is nothing to search for.
func (e *Engine) prepare(q *models.Query) (blevequery.Query, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if !e.registry.Has(q.Kind) {
		return nil, fmt.Errorf("unknown kind: %s", q.Kind)
	}

	fields, err := e.resolveFields(q)
	if err != nil {
		return nil, err
	}

	term := NormalizeTerm(q.Term)
	if term == "" {
		return nil, nil
	}
	return e.buildQuery(*q, term, fields), nil
}

// resolveFields filters the requested fields against the kind's allowed set.
// An empty or fully-skipped request falls back to all of the kind's fields.
func (e *Engine) resolveFields(q *models.Query) ([]string, error) {
	if len(q.Fields) > 0 {
		if filtered := e.registry.Filter(q.Kind, q.Fields); len(filtered) > 0 {
			return filtered, nil
		}
	}
	return e.registry.Fields(q.Kind)
}

// window returns the result window. Invalid bounds are silently ignored and
// the full result set (up to the configured max) is requested.
func (e *Engine) window(q *models.Query) (size, from int) {
	if q.Paged() {
		return q.To - q.From, q.From
	}
	return e.config.MaxWindow, 0
}

// resolve loads the hit records from storage, preserving hit order.
func (e *Engine) resolve(ctx context.Context, hits []index.Hit) ([]*models.Record, error) {
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	records, err := e.store.GetRecords(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	if records == nil {
		records = []*models.Record{}
	}
	return records, nil
}
