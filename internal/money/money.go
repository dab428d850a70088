// Package money holds the fixed-point currency type used by every record
// that carries an amount. Amounts are integer cents; decimal arithmetic is
// only used where a rate or a division is involved, and the result is
// rounded back to cents half away from zero.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Cents is an amount of currency in minor units (1/100).
type Cents int64

// Zero is the zero amount.
const Zero Cents = 0

var ErrPrecision = errors.New("amount has more than two decimal places")

// Parse converts a human amount such as "4.50", "€4.50" or "16" into Cents.
// More than two fractional digits is an error rather than a silent rounding.
func Parse(s string) (Cents, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "€"))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	shifted := d.Shift(2)
	if !shifted.IsInteger() {
		return 0, ErrPrecision
	}
	return Cents(shifted.IntPart()), nil
}

// MustParse is Parse for literals known to be valid, e.g. seed data.
func MustParse(s string) Cents {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// FromDecimal rounds a decimal amount in major units to Cents.
func FromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Shift(2).Round(0).IntPart())
}

// Decimal returns c in major units.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String formats c with two decimals, e.g. "16.50" or "-2.00".
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// Times returns c multiplied by a whole quantity.
func (c Cents) Times(qty int) Cents {
	return c * Cents(qty)
}

// ApplyRate returns c × rate without rounding, so that callers can sum
// several partial results before rounding once.
func (c Cents) ApplyRate(rate decimal.Decimal) decimal.Decimal {
	return c.Decimal().Mul(rate)
}

// Split divides c into ways equal shares rounded to the cent. ways must be
// positive.
func (c Cents) Split(ways int) Cents {
	if ways <= 0 {
		return c
	}
	share := c.Decimal().Div(decimal.NewFromInt(int64(ways)))
	return FromDecimal(share)
}

// Average returns sum/count rounded to the cent, or zero when count is zero.
func Average(sum Cents, count int) Cents {
	if count == 0 {
		return Zero
	}
	return sum.Split(count)
}

// ParseRate parses a tax rate such as "0.21" or "21%".
func ParseRate(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	percent := strings.HasSuffix(s, "%")
	d, err := decimal.NewFromString(strings.TrimSuffix(s, "%"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse rate %q: %w", s, err)
	}
	if percent {
		d = d.Shift(-2)
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("rate %q out of range [0, 1]", s)
	}
	return d, nil
}
