package models

import "testing"

func TestQuery_Validate(t *testing.T) {
	q := Query{Kind: "device", Term: "core"}
	if err := q.Validate(); err != nil {
		t.Fatal(err)
	}
	if q.Mode != ModeAnyKeyword {
		t.Errorf("empty mode should default to any_keyword, got %s", q.Mode)
	}

	q = Query{Term: "core"}
	if err := q.Validate(); err == nil {
		t.Error("expected error for empty kind")
	}

	q = Query{Kind: "device", Term: "core", Mode: "nonsense"}
	if err := q.Validate(); err == nil {
		t.Error("expected error for unknown mode")
	}

	for _, mode := range []Mode{ModePhrase, ModePhraseWildcard, ModeAnyKeyword, ModeFieldMatch} {
		q := Query{Kind: "device", Term: "core", Mode: mode}
		if err := q.Validate(); err != nil {
			t.Errorf("mode %s should validate: %v", mode, err)
		}
	}
}

func TestQuery_Paged(t *testing.T) {
	tests := []struct {
		from, to int
		want     bool
	}{
		{0, 10, true},
		{5, 10, true},
		{0, 0, false}, // to not positive
		{10, 10, false},
		{10, 5, false}, // reversed
		{-1, 10, false},
	}
	for _, tt := range tests {
		q := Query{From: tt.from, To: tt.to}
		if got := q.Paged(); got != tt.want {
			t.Errorf("Paged(from=%d, to=%d) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
