package storage

import (
	"context"
	"fmt"
	"testing"

	"github.com/fieldstone/quarry/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateAndGetRecord(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	rec := &models.Record{
		ID:     "d1",
		Kind:   "device",
		Fields: map[string]string{"name": "core", "vendor": "juniper"},
	}
	if err := store.CreateRecord(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if rec.CreatedAt.IsZero() || rec.UpdatedAt.IsZero() {
		t.Error("timestamps should be set on create")
	}

	got, err := store.GetRecord(ctx, "d1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != "device" || got.Fields["name"] != "core" || got.Fields["vendor"] != "juniper" {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestGetRecord_notFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.GetRecord(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for missing record")
	}
}

func TestGetRecords_preservesOrderAndSkipsMissing(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, id := range []string{"a", "b", "c"} {
		if err := store.CreateRecord(ctx, &models.Record{
			ID: id, Kind: "device", Fields: map[string]string{"name": id},
		}); err != nil {
			t.Fatal(err)
		}
	}

	records, err := store.GetRecords(ctx, []string{"c", "missing", "a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[0].ID != "c" || records[1].ID != "a" {
		t.Errorf("unexpected records: %v", records)
	}

	records, err = store.GetRecords(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("empty ID list should return no records, got %d", len(records))
	}
}

func TestUpdateRecord(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	rec := &models.Record{ID: "d1", Kind: "device", Fields: map[string]string{"name": "core"}}
	if err := store.CreateRecord(ctx, rec); err != nil {
		t.Fatal(err)
	}
	rec.Fields["name"] = "edge"
	if err := store.UpdateRecord(ctx, rec); err != nil {
		t.Fatal(err)
	}
	got, err := store.GetRecord(ctx, "d1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Fields["name"] != "edge" {
		t.Errorf("update not persisted: %v", got.Fields)
	}

	missing := &models.Record{ID: "missing", Kind: "device", Fields: map[string]string{}}
	if err := store.UpdateRecord(ctx, missing); err == nil {
		t.Error("expected error updating missing record")
	}
}

func TestDeleteRecord(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	rec := &models.Record{ID: "d1", Kind: "device", Fields: map[string]string{"name": "core"}}
	if err := store.CreateRecord(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteRecord(ctx, "d1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetRecord(ctx, "d1"); err == nil {
		t.Error("record should be deleted")
	}
}

func TestListRecords(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for i := 0; i < 5; i++ {
		kind := "device"
		if i%2 == 1 {
			kind = "iface"
		}
		if err := store.CreateRecord(ctx, &models.Record{
			ID: fmt.Sprintf("r%d", i), Kind: kind, Fields: map[string]string{"name": "x"},
		}); err != nil {
			t.Fatal(err)
		}
	}

	records, err := store.ListRecords(ctx, 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Errorf("ListRecords limit 3 returned %d", len(records))
	}

	records, err = store.ListRecords(ctx, 3, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Errorf("ListRecords offset 3 returned %d, want 2", len(records))
	}

	ifaces, err := store.ListRecordsByKind(ctx, "iface", 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(ifaces) != 2 {
		t.Errorf("ListRecordsByKind returned %d, want 2", len(ifaces))
	}
	for _, rec := range ifaces {
		if rec.Kind != "iface" {
			t.Errorf("unexpected kind %s", rec.Kind)
		}
	}
}

func TestCountRecords(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	count, err := store.CountRecords(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("empty store count = %d", count)
	}
	if err := store.CreateRecord(ctx, &models.Record{
		ID: "d1", Kind: "device", Fields: map[string]string{"name": "x"},
	}); err != nil {
		t.Fatal(err)
	}
	count, _ = store.CountRecords(ctx)
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}
