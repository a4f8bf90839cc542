// Package models defines core data structures for records, queries, and search results.
package models

import "time"

// Record is a stored inventory record of a registered kind.
// Fields holds the searchable attributes as flat name/value pairs.
type Record struct {
	ID        string            `json:"id" db:"id"`
	Kind      string            `json:"kind" db:"kind"`
	Fields    map[string]string `json:"fields" db:"fields"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" db:"updated_at"`
}

// RecordInput is the input for creating or updating a record.
type RecordInput struct {
	ID     string            `json:"id,omitempty"`
	Kind   string            `json:"kind"`
	Fields map[string]string `json:"fields"`
}
