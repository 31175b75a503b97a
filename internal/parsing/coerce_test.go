package parsing

import (
	"math"
	"reflect"
	"testing"
)

func TestCoerceBool(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want bool
	}{
		{"true bool", true, true},
		{"false bool", false, false},
		{"yes string", " YES ", true},
		{"true string", "true", true},
		{"no string", "no", false},
		{"nonzero number", float64(1), true},
		{"zero number", float64(0), false},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CoerceBool(tc.in); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCoerceFloat(t *testing.T) {
	if got := CoerceFloat(float64(85.5)); got != 85.5 {
		t.Fatalf("expected 85.5, got %v", got)
	}

	if got := CoerceFloat("72"); got != 72 {
		t.Fatalf("expected 72, got %v", got)
	}

	for _, in := range []any{"", "N/A", nil, []any{1}} {
		if got := CoerceFloat(in); !math.IsNaN(got) {
			t.Fatalf("input %v: expected NaN, got %v", in, got)
		}
	}
}

func TestCoerceInt(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want int
	}{
		{"rounds up", float64(4.6), 5},
		{"numeric string", "42", 42},
		{"not a number", "N/A", 0},
		{"nil", nil, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CoerceInt(tc.in); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestCoerceString(t *testing.T) {
	if got := CoerceString("  hello  "); got != "hello" {
		t.Fatalf("expected trimmed string, got %q", got)
	}

	if got := CoerceString(nil); got != "" {
		t.Fatalf("expected empty string for nil, got %q", got)
	}

	if got := CoerceString(map[string]any{"a": float64(1)}); got != `{"a":1}` {
		t.Fatalf("expected json rendering, got %q", got)
	}
}

func TestCoerceStringSlice(t *testing.T) {
	got := CoerceStringSlice([]any{"Immunology", "  ", "T cell", float64(42)})
	want := []string{"Immunology", "T cell", "42"}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if got := CoerceStringSlice("Genomics"); !reflect.DeepEqual(got, []string{"Genomics"}) {
		t.Fatalf("expected single-element slice, got %v", got)
	}

	if got := CoerceStringSlice(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
