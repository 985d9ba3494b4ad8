package loader

import (
	"math"
	"strconv"
	"strings"
)

// CoerceCount parses a raw CSV field into a non-negative count.
//
// Coercion policy (applied consistently across all numeric columns):
// empty, non-numeric, negative, non-finite, or out-of-range values
// coerce to 0. Values with a fractional part are truncated toward
// zero, since export tools frequently write counts as "12345.0".
func CoerceCount(field string) int64 {
	field = strings.TrimSpace(field)
	if field == "" {
		return 0
	}
	f, err := strconv.ParseFloat(field, 64)
	// The upper bound check keeps the float→int64 conversion defined;
	// beyond it the conversion result is implementation-specific and
	// can go negative.
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f >= math.MaxInt64 {
		return 0
	}
	return int64(f)
}
