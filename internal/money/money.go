// Package money converts between major-unit decimal strings and integer
// minor units. Amounts are never carried as floats.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrOverflow is returned when an amount does not fit in int64 minor units.
var ErrOverflow = errors.New("amount is too large")

var maxCents = decimal.NewFromInt(math.MaxInt64)

// ParseMajor converts a major-unit amount such as "12.99" into minor units,
// rounding half away from zero at the second decimal place.
func ParseMajor(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("amount is empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount must not be negative")
	}
	cents := d.Shift(2).Round(0)
	if cents.GreaterThan(maxCents) {
		return 0, fmt.Errorf("invalid amount %q: %w", s, ErrOverflow)
	}
	return cents.IntPart(), nil
}

// MulCents returns cents*n for non-negative operands, or ErrOverflow.
func MulCents(cents, n int64) (int64, error) {
	if cents < 0 || n < 0 {
		return 0, fmt.Errorf("negative operand")
	}
	if n != 0 && cents > math.MaxInt64/n {
		return 0, ErrOverflow
	}
	return cents * n, nil
}

// AddCents returns a+b for non-negative operands, or ErrOverflow.
func AddCents(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, fmt.Errorf("negative operand")
	}
	if a > math.MaxInt64-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// Major returns cents as a decimal in major units.
func Major(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Format renders cents as a fixed two-decimal major-unit string.
func Format(cents int64) string {
	return Major(cents).StringFixed(2)
}
