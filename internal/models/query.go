package models

import "fmt"

// Mode selects the query shape. It changes only how the term is matched,
// never the field list or pagination.
type Mode string

const (
	// ModePhrase matches the whole term as a phrase on any of the fields.
	ModePhrase Mode = "phrase"
	// ModePhraseWildcard requires every token to match as a prefix wildcard on any field.
	ModePhraseWildcard Mode = "phrase_wildcard"
	// ModeAnyKeyword matches any token of the term on any field.
	ModeAnyKeyword Mode = "any_keyword"
	// ModeFieldMatch treats the term as a JSON object of field -> value matches,
	// all of which must hold.
	ModeFieldMatch Mode = "field_match"
)

// Query is the immutable per-call search configuration. Construct a fresh
// value for every search; nothing carries over between calls.
type Query struct {
	Kind   string   `json:"kind"`
	Fields []string `json:"fields,omitempty"`
	Term   string   `json:"term"`
	Mode   Mode     `json:"mode,omitempty"`
	// From/To bound the result window. They apply only when to > 0, to > from
	// and from >= 0; any other combination requests the full result set.
	From int `json:"from,omitempty"`
	To   int `json:"to,omitempty"`
}

// Validate checks the query's kind and mode. An empty mode defaults to any_keyword.
func (q *Query) Validate() error {
	if q.Kind == "" {
		return fmt.Errorf("kind cannot be empty")
	}
	switch q.Mode {
	case "":
		q.Mode = ModeAnyKeyword
	case ModePhrase, ModePhraseWildcard, ModeAnyKeyword, ModeFieldMatch:
	default:
		return fmt.Errorf("unknown search mode: %s", q.Mode)
	}
	return nil
}

// Paged reports whether the pagination window is valid and should apply.
func (q *Query) Paged() bool {
	return q.To > 0 && q.To > q.From && q.From >= 0
}
