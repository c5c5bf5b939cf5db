// Package money converts between integer minor currency units and the
// fixed-point decimal strings used on the wire.
//
// Amounts are int64 minor units (cents, paise) everywhere inside the
// service. Decimal strings exist only at the HTTP and CLI boundary.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultExponent is the number of fractional digits of two-decimal currencies.
const DefaultExponent int32 = 2

// ErrInvalidAmount is returned for negative, malformed, overflowing or
// over-precise amounts. Such input is rejected, never rounded.
var ErrInvalidAmount = errors.New("invalid amount")

// Codec parses and formats amounts for a currency with a fixed exponent.
type Codec struct {
	Exponent int32
}

// NewCodec returns a codec for the given exponent.
func NewCodec(exponent int32) Codec {
	if exponent < 0 {
		exponent = DefaultExponent
	}
	return Codec{Exponent: exponent}
}

// Parse converts a decimal string such as "12.50" into minor units.
func (c Codec) Parse(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}

	scaled := d.Shift(c.Exponent)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidAmount, s, c.Exponent)
	}

	n := scaled.BigInt()
	if !n.IsInt64() {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, s)
	}
	return n.Int64(), nil
}

// Format renders minor units as a fixed-point decimal string.
func (c Codec) Format(minor int64) string {
	return decimal.New(minor, -c.Exponent).StringFixed(c.Exponent)
}

// Resolve picks the amount from either a decimal string or an integer
// minor-unit field. Exactly one must be set.
func (c Codec) Resolve(display *string, minor *int64) (int64, error) {
	switch {
	case display != nil && minor != nil:
		return 0, fmt.Errorf("%w: both decimal and minor-unit amounts given", ErrInvalidAmount)
	case display != nil:
		return c.Parse(*display)
	case minor != nil:
		if err := Validate(*minor); err != nil {
			return 0, err
		}
		return *minor, nil
	default:
		return 0, fmt.Errorf("%w: missing", ErrInvalidAmount)
	}
}

// Validate rejects negative minor-unit amounts.
func Validate(minor int64) error {
	if minor < 0 {
		return fmt.Errorf("%w: %d is negative", ErrInvalidAmount, minor)
	}
	return nil
}

// Add returns a+b, failing instead of wrapping on int64 overflow.
func Add(a, b int64) (int64, error) {
	sum := a + b
	if (a > 0 && b > 0 && sum < 0) || (a < 0 && b < 0 && sum >= 0) {
		return 0, fmt.Errorf("%w: overflow adding %d and %d", ErrInvalidAmount, a, b)
	}
	return sum, nil
}

// Sub returns a-b, failing instead of wrapping on int64 overflow.
func Sub(a, b int64) (int64, error) {
	diff := a - b
	if (b < 0 && a > 0 && diff < 0) || (b > 0 && a < 0 && diff >= 0) {
		return 0, fmt.Errorf("%w: overflow subtracting %d from %d", ErrInvalidAmount, b, a)
	}
	return diff, nil
}

// SplitEven divides total into n equal shares. The remainder is the
// number of minor units left over for the remainder holder.
func SplitEven(total int64, n int) (share, remainder int64, err error) {
	if n <= 0 {
		return 0, 0, fmt.Errorf("cannot split among %d participants", n)
	}
	if err := Validate(total); err != nil {
		return 0, 0, err
	}
	share = total / int64(n)
	remainder = total - share*int64(n)
	return share, remainder, nil
}
