// Package money holds the fixed-point currency arithmetic used for quote
// pricing. Amounts are shopspring decimals rounded to cents, half away from
// zero; every amount handled here is non-negative, so that is half-up.
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places kept on every currency amount.
const Scale int32 = 2

// DefaultQuantity applies when a line is added without a quantity.
const DefaultQuantity = 1

// MaxQuantity caps the units billed on a single line.
const MaxQuantity = 1_000_000

var (
	// DefaultTaxRate is the VAT percentage applied when a line omits one.
	DefaultTaxRate = decimal.NewFromInt(20)

	hundred = decimal.NewFromInt(100)

	// Upper bounds match the storage columns: unit_price numeric(12,2),
	// tax_rate numeric(7,2), totals numeric(24,2).
	MaxUnitPrice = decimal.RequireFromString("9999999999.99")
	MaxTaxRate   = decimal.RequireFromString("99999.99")
	MaxTotal     = decimal.RequireFromString("9999999999999999999999.99")
)

var (
	ErrInvalidQuantity  = errors.New("quantity must be a positive integer")
	ErrNegativePrice    = errors.New("unit price must not be negative")
	ErrNegativeTaxRate  = errors.New("tax rate must not be negative")
	ErrQuantityTooLarge = errors.New("quantity must be at most 1000000")
	ErrPriceScale       = errors.New("unit price must have at most 2 decimal places")
	ErrPriceTooLarge    = errors.New("unit price must be at most 9999999999.99")
	ErrTaxRateScale     = errors.New("tax rate must have at most 2 decimal places")
	ErrTaxRateTooLarge  = errors.New("tax rate must be at most 99999.99")
	ErrTotalTooLarge    = errors.New("quote total exceeds the storable maximum")
)

// FitsScale reports whether d is representable with Scale decimal places.
func FitsScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(Scale))
}

// Round rounds an amount to cents.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Zero returns a zero amount at cent scale.
func Zero() decimal.Decimal {
	return decimal.Zero.Round(Scale)
}

// Sum adds amounts without intermediate rounding.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Format renders an amount with exactly two decimals.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}

// Parse reads a currency or rate amount from its string form.
func Parse(value string) (decimal.Decimal, error) {
	return decimal.NewFromString(value)
}
