// Package schema holds the registry of record kinds and their searchable fields.
package schema

import (
	"fmt"
	"sort"
)

// Registry maps a record kind to its allowed searchable fields.
type Registry struct {
	kinds map[string]map[string]struct{}
}

// NewRegistry builds a registry from kind name -> field list.
func NewRegistry(kinds map[string][]string) *Registry {
	r := &Registry{kinds: make(map[string]map[string]struct{}, len(kinds))}
	for kind, fields := range kinds {
		set := make(map[string]struct{}, len(fields))
		for _, f := range fields {
			set[f] = struct{}{}
		}
		r.kinds[kind] = set
	}
	return r
}

// Has reports whether kind is registered.
func (r *Registry) Has(kind string) bool {
	_, ok := r.kinds[kind]
	return ok
}

// Allowed reports whether field is a searchable field of kind.
func (r *Registry) Allowed(kind, field string) bool {
	set, ok := r.kinds[kind]
	if !ok {
		return false
	}
	_, ok = set[field]
	return ok
}

// Fields returns the sorted searchable fields of kind.
// Returns an error for an unregistered kind.
func (r *Registry) Fields(kind string) ([]string, error) {
	set, ok := r.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown kind: %s", kind)
	}
	fields := make([]string, 0, len(set))
	for f := range set {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields, nil
}

// Filter returns the subset of fields that are searchable on kind, preserving order.
// Unknown fields are dropped.
func (r *Registry) Filter(kind string, fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if r.Allowed(kind, f) {
			out = append(out, f)
		}
	}
	return out
}

// Kinds returns the sorted registered kind names.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.kinds))
	for k := range r.kinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
