package number

import (
	"github.com/shopspring/decimal"
)

const (
	// DivPrecision significant digits carried by intermediate divisions
	// before a result is reduced to a representable amount
	DivPrecision int32 = 36
	// AmountPrecision book-keeping precision of asset amounts
	AmountPrecision int32 = 8
)

func Decimal(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

// Div divides with explicit high precision instead of the package level
// decimal.DivisionPrecision
func Div(a, b decimal.Decimal) decimal.Decimal {
	return a.DivRound(b, DivPrecision)
}

// Ceil rounds up at the given precision
func Ceil(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Shift(precision).Ceil().Shift(-precision)
}

// Floor rounds down at the given precision
func Floor(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Truncate(precision)
}

// NonNegative clamps negative values to zero
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}

	return d
}
