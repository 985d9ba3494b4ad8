package loader_test

import (
	"testing"

	"covid-dashboard/internal/infra/loader"
)

func TestCoerceCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		field string
		want  int64
	}{
		{name: "plain integer", field: "12345", want: 12345},
		{name: "float export format", field: "12345.0", want: 12345},
		{name: "fraction truncates toward zero", field: "99.9", want: 99},
		{name: "whitespace trimmed", field: "  42  ", want: 42},
		{name: "empty", field: "", want: 0},
		{name: "whitespace only", field: "   ", want: 0},
		{name: "non-numeric", field: "n/a", want: 0},
		{name: "negative", field: "-5", want: 0},
		{name: "negative float", field: "-0.5", want: 0},
		{name: "nan", field: "NaN", want: 0},
		{name: "positive infinity", field: "+Inf", want: 0},
		{name: "negative infinity", field: "-Inf", want: 0},
		{name: "zero", field: "0", want: 0},
		{name: "scientific notation", field: "1.5e3", want: 1500},
		{name: "beyond int64 range", field: "1e19", want: 0},
		{name: "huge decimal", field: "99999999999999999999", want: 0},
		{name: "exactly 2^63", field: "9223372036854775808", want: 0},
		{name: "largest safely convertible", field: "9e18", want: 9_000_000_000_000_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := loader.CoerceCount(tt.field); got != tt.want {
				t.Errorf("CoerceCount(%q) = %d, want %d", tt.field, got, tt.want)
			}
		})
	}
}
