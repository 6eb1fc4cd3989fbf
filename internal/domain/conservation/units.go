package conservation

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// RoundingMode selects how fractional results are brought to integers before
// they are sent to the contract.
type RoundingMode int

const (
	// RoundHalfEven rounds to the nearest integer, ties to even.
	RoundHalfEven RoundingMode = iota
	// RoundTruncate drops the fraction, rounding toward zero.
	RoundTruncate
	// RoundHalfUp rounds to the nearest integer, ties away from zero.
	RoundHalfUp
)

func (m RoundingMode) String() string {
	switch m {
	case RoundHalfEven:
		return "half_even"
	case RoundTruncate:
		return "truncate"
	case RoundHalfUp:
		return "half_up"
	default:
		return fmt.Sprintf("rounding(%d)", int(m))
	}
}

// ParseRoundingMode parses "half_even", "half_up" or "truncate". The empty
// string is RoundHalfEven.
func ParseRoundingMode(name string) (RoundingMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "half_even", "half-even", "bankers":
		return RoundHalfEven, nil
	case "half_up", "half-up":
		return RoundHalfUp, nil
	case "truncate", "trunc":
		return RoundTruncate, nil
	default:
		return 0, fmt.Errorf("%w: unknown rounding mode %q", ErrInvalidInput, name)
	}
}

// Scaling factors applied before values go on the wire.
const (
	MinorUnitsPerMajor = 100
	FixedPointScale    = 100
)

var (
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
	minInt64 = decimal.NewFromInt(math.MinInt64)
)

// Round brings v to an integer under mode.
func Round(v decimal.Decimal, mode RoundingMode) decimal.Decimal {
	switch mode {
	case RoundTruncate:
		return v.Truncate(0)
	case RoundHalfUp:
		return v.Round(0)
	default:
		return v.RoundBank(0)
	}
}

// Scale returns round(v * factor) under mode.
func Scale(v decimal.Decimal, factor int64, mode RoundingMode) (int64, error) {
	scaled := Round(v.Mul(decimal.NewFromInt(factor)), mode)
	if scaled.GreaterThan(maxInt64) || scaled.LessThan(minInt64) {
		return 0, fmt.Errorf("%w: %s", ErrAmountOutOfRange, v.String())
	}
	return scaled.IntPart(), nil
}

// ToMinorUnits converts a currency amount to integer cents.
func ToMinorUnits(amount decimal.Decimal, mode RoundingMode) (int64, error) {
	return Scale(amount, MinorUnitsPerMajor, mode)
}

// ToFixedPoint converts a metric value to fixed-point hundredths.
func ToFixedPoint(value decimal.Decimal, mode RoundingMode) (int64, error) {
	return Scale(value, FixedPointScale, mode)
}
