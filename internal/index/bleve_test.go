package index

import (
	"context"
	"testing"

	"github.com/blevesearch/bleve/v2"

	"github.com/fieldstone/quarry/internal/models"
)

func record(id, kind string, fields map[string]string) *models.Record {
	return &models.Record{ID: id, Kind: kind, Fields: fields}
}

func TestBleveIndex_indexAndSearch(t *testing.T) {
	ctx := context.Background()
	idx, err := NewBleveIndex(t.TempDir() + "/bleve")
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	if err := idx.Index(ctx, record("d1", "device", map[string]string{"name": "core switch"})); err != nil {
		t.Fatal(err)
	}
	if err := idx.Index(ctx, record("d2", "device", map[string]string{"name": "edge router"})); err != nil {
		t.Fatal(err)
	}

	q := bleve.NewMatchQuery("core")
	q.SetField("name")
	hits, total, err := idx.Search(ctx, q, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(hits) != 1 || hits[0].ID != "d1" {
		t.Errorf("unexpected hits: total=%d hits=%v", total, hits)
	}
	if hits[0].Score <= 0 {
		t.Errorf("expected positive score, got %f", hits[0].Score)
	}
}

func TestBleveIndex_kindIsKeywordField(t *testing.T) {
	ctx := context.Background()
	idx, err := NewBleveIndex(t.TempDir() + "/bleve")
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	if err := idx.Index(ctx, record("d1", "device", map[string]string{"name": "core"})); err != nil {
		t.Fatal(err)
	}
	if err := idx.Index(ctx, record("i1", "iface", map[string]string{"name": "core"})); err != nil {
		t.Fatal(err)
	}

	kindQ := bleve.NewTermQuery("iface")
	kindQ.SetField("kind")
	hits, _, err := idx.Search(ctx, kindQ, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "i1" {
		t.Errorf("kind filter should select only iface records, got %v", hits)
	}
}

func TestBleveIndex_reopen(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/bleve"
	idx, err := NewBleveIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.Index(ctx, record("d1", "device", map[string]string{"name": "core"})); err != nil {
		t.Fatal(err)
	}
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewBleveIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	count, err := reopened.DocCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("DocCount after reopen = %d, want 1", count)
	}
}

func TestBleveIndex_purge(t *testing.T) {
	ctx := context.Background()
	idx, err := NewBleveIndex(t.TempDir() + "/bleve")
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	if err := idx.Index(ctx, record("d1", "device", map[string]string{"name": "core"})); err != nil {
		t.Fatal(err)
	}
	if err := idx.Purge(); err != nil {
		t.Fatal(err)
	}
	count, err := idx.DocCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("DocCount after purge = %d, want 0", count)
	}

	// The purged index stays usable.
	if err := idx.Index(ctx, record("d2", "device", map[string]string{"name": "edge"})); err != nil {
		t.Fatal(err)
	}
	count, _ = idx.DocCount()
	if count != 1 {
		t.Errorf("DocCount after reindex = %d, want 1", count)
	}
}

func TestBleveIndex_count(t *testing.T) {
	ctx := context.Background()
	idx, err := NewBleveIndex(t.TempDir() + "/bleve")
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	for _, id := range []string{"d1", "d2", "d3"} {
		if err := idx.Index(ctx, record(id, "device", map[string]string{"name": "core"})); err != nil {
			t.Fatal(err)
		}
	}
	q := bleve.NewMatchQuery("core")
	q.SetField("name")
	total, err := idx.Count(ctx, q)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Errorf("Count = %d, want 3", total)
	}
}
