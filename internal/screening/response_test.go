package screening

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodeObject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		wantKey string
		wantErr bool
	}{
		{name: "plain json", raw: `{"a": 1}`, wantKey: "a"},
		{name: "wrapped in prose", raw: "Here you go:\n{\"a\": 1}\nThanks", wantKey: "a"},
		{name: "code fence", raw: "```json\n{\"a\": {\"b\": 2}}\n```", wantKey: "a"},
		{name: "no braces", raw: "I cannot help with that.", wantErr: true},
		{name: "broken json between braces", raw: "{not json}", wantErr: true},
		{name: "closing brace before opening", raw: "} oops {", wantErr: true},
		{name: "top level array without object", raw: `[1, 2]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := decodeObject(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrResponseParse) {
					t.Fatalf("expected ErrResponseParse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, ok := data[tt.wantKey]; !ok {
				t.Fatalf("expected key %q in %v", tt.wantKey, data)
			}
		})
	}
}

func TestResponseParseErrorSnippetIsBounded(t *testing.T) {
	raw := strings.Repeat("x", 500)

	_, err := decodeObject(raw)

	var perr *ResponseParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ResponseParseError, got %v", err)
	}

	if len([]rune(perr.Snippet)) != snippetLength {
		t.Fatalf("expected snippet of %d characters, got %d", snippetLength, len([]rune(perr.Snippet)))
	}
}

func TestRoundScore(t *testing.T) {
	t.Parallel()

	cases := map[float64]float64{
		95:     95,
		87.25:  87.2,
		87.24:  87.2,
		0.15:   0.1,
		2.25:   2.2,
		2.35:   2.4,
		-1.06:  -1.1,
		100.04: 100,
	}

	for in, want := range cases {
		if got := roundScore(in); got != want {
			t.Fatalf("roundScore(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestNormalizeRolesMixedShapes(t *testing.T) {
	raw := []any{
		"Backend Engineer",
		map[string]any{"role": "Platform Engineer", "score": float64(9)},
		map[string]any{"score": float64(7)},
		map[string]any{"role": "SRE"},
		float64(42),
		nil,
		map[string]any{"role": "Data Engineer", "score": "6"},
	}

	roles := normalizeRoles(raw)

	want := []SuitableRole{
		{Role: "Platform Engineer", Score: 9},
		{Role: "Unknown", Score: 7},
		{Role: "Data Engineer", Score: 6},
		{Role: "Backend Engineer", Score: 5},
		{Role: "SRE", Score: 5},
	}

	if len(roles) != len(want) {
		t.Fatalf("expected %d roles, got %d: %+v", len(want), len(roles), roles)
	}

	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("role %d: expected %+v, got %+v", i, want[i], roles[i])
		}
	}
}

func TestNormalizeRolesNonList(t *testing.T) {
	if roles := normalizeRoles("Engineer"); roles == nil || len(roles) != 0 {
		t.Fatalf("expected empty non-nil roles, got %#v", roles)
	}
}
