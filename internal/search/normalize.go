package search

import (
	"encoding/json"
	"regexp"
	"strings"
)

// reservedChars strips characters the engine's query syntax reserves.
// The standard analyzer drops these at index time, so leaving them in a term
// can only break wildcard and term queries.
var reservedChars = regexp.MustCompile(`[-+&|!(){}^"~*?:@\\/]+`)

// literalPrefix on a token disables wildcard suffixing for that token.
const literalPrefix = "="

// NormalizeTerm lowercases the term, replaces reserved query-syntax characters
// with spaces, and collapses whitespace. Returns "" when nothing searchable remains.
func NormalizeTerm(term string) string {
	term = strings.ToLower(term)
	term = reservedChars.ReplaceAllString(term, " ")
	return strings.Join(strings.Fields(term), " ")
}

// parseFieldTerm tries to interpret term as a JSON object of field -> value
// strings for per-field matching. ok is false when term is not shaped that way;
// the caller then falls back to plain-term handling.
func parseFieldTerm(term string) (map[string]string, bool) {
	trimmed := strings.TrimSpace(term)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}
	var pairs map[string]string
	if err := json.Unmarshal([]byte(trimmed), &pairs); err != nil {
		return nil, false
	}
	return pairs, true
}
