package search

import "testing"

func TestNormalizeTerm(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Core Router", "core router"},
		{"strips reserved characters", `core+router && (edge)`, "core router edge"},
		{"collapses whitespace", "  core   router  ", "core router"},
		{"wildcard marker stripped", "core*", "core"},
		{"query syntax stripped", `name:"core" ip:10.0.0.1`, "name core ip 10.0.0.1"},
		{"keeps literal marker", "=core", "=core"},
		{"only reserved characters", `+-&&||!^"~*?:\/`, ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTerm(tt.in); got != tt.want {
				t.Errorf("NormalizeTerm(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFieldTerm(t *testing.T) {
	pairs, ok := parseFieldTerm(`{"name": "core", "ip_address": "10.1"}`)
	if !ok {
		t.Fatal("expected structured term to parse")
	}
	if pairs["name"] != "core" || pairs["ip_address"] != "10.1" {
		t.Errorf("unexpected pairs: %v", pairs)
	}
}

func TestParseFieldTerm_notStructured(t *testing.T) {
	for _, in := range []string{
		"core router",
		`{"name": }`,         // malformed JSON
		`{"name": {"a": 1}}`, // values must be strings
		"",
	} {
		if _, ok := parseFieldTerm(in); ok {
			t.Errorf("parseFieldTerm(%q) should not parse as structured", in)
		}
	}
}
