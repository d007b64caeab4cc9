package money

import "github.com/shopspring/decimal"

// LineTotals holds the derived amounts of a single billable line.
type LineTotals struct {
	Exclusive decimal.Decimal
	Tax       decimal.Decimal
	Inclusive decimal.Decimal
}

// ComputeLine prices a line:
//
//	exclusive = round(quantity * unitPrice)
//	tax       = round(exclusive * taxRate / 100)
//	inclusive = exclusive + tax
//
// Rates above 100 are accepted.
func ComputeLine(quantity int, unitPrice, taxRate decimal.Decimal) (LineTotals, error) {
	if quantity <= 0 {
		return LineTotals{}, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return LineTotals{}, ErrNegativePrice
	}
	if taxRate.IsNegative() {
		return LineTotals{}, ErrNegativeTaxRate
	}

	exclusive := Round(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
	tax := Round(exclusive.Mul(taxRate).Div(hundred))
	return LineTotals{
		Exclusive: exclusive,
		Tax:       tax,
		Inclusive: exclusive.Add(tax),
	}, nil
}

// CheckLineInput rejects inputs the line columns cannot store exactly.
// Prices and rates are kept as entered, so they must already be in cents.
func CheckLineInput(quantity int, unitPrice, taxRate decimal.Decimal) error {
	switch {
	case quantity <= 0:
		return ErrInvalidQuantity
	case quantity > MaxQuantity:
		return ErrQuantityTooLarge
	case unitPrice.IsNegative():
		return ErrNegativePrice
	case !FitsScale(unitPrice):
		return ErrPriceScale
	case unitPrice.GreaterThan(MaxUnitPrice):
		return ErrPriceTooLarge
	case taxRate.IsNegative():
		return ErrNegativeTaxRate
	case !FitsScale(taxRate):
		return ErrTaxRateScale
	case taxRate.GreaterThan(MaxTaxRate):
		return ErrTaxRateTooLarge
	}
	return nil
}

// Add returns the element-wise sum of two totals.
func (t LineTotals) Add(other LineTotals) LineTotals {
	return LineTotals{
		Exclusive: t.Exclusive.Add(other.Exclusive),
		Tax:       t.Tax.Add(other.Tax),
		Inclusive: t.Inclusive.Add(other.Inclusive),
	}
}
