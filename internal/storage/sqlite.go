// Package storage provides the SQLite implementation of the Store interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fieldstone/quarry/internal/models"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		fields TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_records_kind ON records(kind);
	CREATE INDEX IF NOT EXISTS idx_records_created_at ON records(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateRecord inserts a record.
func (s *SQLiteStore) CreateRecord(ctx context.Context, rec *models.Record) error {
	fieldsJSON, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("failed to marshal fields: %w", err)
	}

	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (id, kind, fields, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Kind, string(fieldsJSON), rec.CreatedAt, rec.UpdatedAt,
	)
	return err
}

// GetRecord returns a record by ID.
func (s *SQLiteStore) GetRecord(ctx context.Context, id string) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, fields, created_at, updated_at FROM records WHERE id = ?`, id,
	)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("record not found: %s", id)
	}
	return rec, err
}

// GetRecords returns records for the given IDs, preserving the input order.
// IDs without a stored record are silently skipped.
func (s *SQLiteStore) GetRecords(ctx context.Context, ids []string) ([]*models.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, fields, created_at, updated_at FROM records WHERE id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*models.Record, len(ids))
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		byID[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*models.Record, 0, len(ids))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// UpdateRecord updates an existing record.
func (s *SQLiteStore) UpdateRecord(ctx context.Context, rec *models.Record) error {
	fieldsJSON, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("failed to marshal fields: %w", err)
	}

	rec.UpdatedAt = time.Now()

	result, err := s.db.ExecContext(ctx,
		`UPDATE records SET kind = ?, fields = ?, updated_at = ? WHERE id = ?`,
		rec.Kind, string(fieldsJSON), rec.UpdatedAt, rec.ID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("record not found: %s", rec.ID)
	}
	return nil
}

// DeleteRecord removes a record by ID.
func (s *SQLiteStore) DeleteRecord(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	return err
}

// ListRecords returns records with offset and limit, newest first.
func (s *SQLiteStore) ListRecords(ctx context.Context, offset, limit int) ([]*models.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, fields, created_at, updated_at
		 FROM records ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ListRecordsByKind returns records of one kind with offset and limit.
func (s *SQLiteStore) ListRecordsByKind(ctx context.Context, kind string, offset, limit int) ([]*models.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, fields, created_at, updated_at
		 FROM records WHERE kind = ? ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		kind, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// CountRecords returns the total number of records.
func (s *SQLiteStore) CountRecords(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*models.Record, error) {
	var rec models.Record
	var fieldsJSON string
	if err := row.Scan(&rec.ID, &rec.Kind, &fieldsJSON, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if fieldsJSON != "" {
		if err := json.Unmarshal([]byte(fieldsJSON), &rec.Fields); err != nil {
			return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
		}
	}
	return &rec, nil
}

func collectRecords(rows *sql.Rows) ([]*models.Record, error) {
	var recs []*models.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
