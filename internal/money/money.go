// Package money represents currency amounts as an integer count of minor
// units (paise). Integer arithmetic avoids the floating-point drift that
// corrupts running balances, and every operation that could overflow fails
// loudly instead of wrapping.
package money

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	ErrOverflow           = errors.New("money: amount overflows minor-unit range")
	ErrFractionalMinorUnit = errors.New("money: amount has fractional minor units")
)

// minorUnitsPerMajor is the scale between the display unit and the stored
// unit (100 paise to the rupee).
const minorUnitExponent = 2

// Money is a signed amount in minor units.
type Money int64

// Zero is the additive identity.
const Zero Money = 0

// FromMinorUnits builds a Money from a raw minor-unit count.
func FromMinorUnits(units int64) Money {
	return Money(units)
}

// FromDecimal converts a major-unit decimal amount (e.g. "150.25") into
// minor units. Amounts with sub-minor-unit precision are rejected rather
// than rounded.
func FromDecimal(d decimal.Decimal) (Money, error) {
	scaled := d.Shift(minorUnitExponent)
	if !scaled.IsInteger() {
		return Zero, ErrFractionalMinorUnit
	}
	big := scaled.BigInt()
	if !big.IsInt64() {
		return Zero, ErrOverflow
	}
	return Money(big.Int64()), nil
}

// Parse converts a major-unit decimal string into Money.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("money: invalid amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

// MinorUnits returns the raw minor-unit count.
func (m Money) MinorUnits() int64 {
	return int64(m)
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -minorUnitExponent)
}

// Add returns m + other, failing on overflow.
func (m Money) Add(other Money) (Money, error) {
	if (other > 0 && m > math.MaxInt64-other) || (other < 0 && m < math.MinInt64-other) {
		return Zero, ErrOverflow
	}
	return m + other, nil
}

// Sub returns m - other, failing on overflow.
func (m Money) Sub(other Money) (Money, error) {
	if other == math.MinInt64 {
		return Zero, ErrOverflow
	}
	return m.Add(-other)
}

// Neg returns the negated amount. Negating the minimum representable value
// overflows and fails.
func (m Money) Neg() (Money, error) {
	if m == math.MinInt64 {
		return Zero, ErrOverflow
	}
	return -m, nil
}

// Cmp returns -1, 0 or 1 as m is less than, equal to or greater than other.
func (m Money) Cmp(other Money) int {
	switch {
	case m < other:
		return -1
	case m > other:
		return 1
	default:
		return 0
	}
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m > 0
}

// IsNegative reports whether the amount is strictly less than zero.
func (m Money) IsNegative() bool {
	return m < 0
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m == 0
}

// String formats the amount in major units with two decimal places.
func (m Money) String() string {
	return m.Decimal().StringFixed(minorUnitExponent)
}

// MarshalJSON encodes the amount as a major-unit decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts either a decimal string or a bare JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer, storing the raw minor-unit count.
func (m Money) Value() (driver.Value, error) {
	return int64(m), nil
}

// Scan implements sql.Scanner for integer minor-unit columns.
func (m *Money) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = Zero
		return nil
	case int64:
		*m = Money(v)
		return nil
	case []byte:
		parsed, err := decimal.NewFromString(string(v))
		if err != nil {
			return fmt.Errorf("money: cannot scan %q: %w", string(v), err)
		}
		if !parsed.IsInteger() {
			return ErrFractionalMinorUnit
		}
		*m = Money(parsed.IntPart())
		return nil
	case string:
		return m.Scan([]byte(v))
	default:
		return fmt.Errorf("money: cannot scan %T", value)
	}
}
