package money

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeLine(t *testing.T) {
	tests := []struct {
		name      string
		qty       int
		price     string
		rate      string
		exclusive string
		tax       string
		inclusive string
	}{
		{name: "standard rate", qty: 2, price: "150", rate: "20", exclusive: "300.00", tax: "60.00", inclusive: "360.00"},
		{name: "reduced rate", qty: 1, price: "300", rate: "5.5", exclusive: "300.00", tax: "16.50", inclusive: "316.50"},
		{name: "added line", qty: 3, price: "50", rate: "20", exclusive: "150.00", tax: "30.00", inclusive: "180.00"},
		{name: "zero price", qty: 4, price: "0", rate: "20", exclusive: "0.00", tax: "0.00", inclusive: "0.00"},
		{name: "zero rate", qty: 1, price: "99.99", rate: "0", exclusive: "99.99", tax: "0.00", inclusive: "99.99"},
		{name: "exclusive rounds half up", qty: 3, price: "0.335", rate: "0", exclusive: "1.01", tax: "0.00", inclusive: "1.01"},
		{name: "tax rounds half up", qty: 1, price: "0.05", rate: "10", exclusive: "0.05", tax: "0.01", inclusive: "0.06"},
		{name: "tax rounds down below half", qty: 1, price: "0.04", rate: "10", exclusive: "0.04", tax: "0.00", inclusive: "0.04"},
		{name: "rate above one hundred", qty: 1, price: "10", rate: "150", exclusive: "10.00", tax: "15.00", inclusive: "25.00"},
		{name: "no float drift", qty: 3, price: "0.1", rate: "20", exclusive: "0.30", tax: "0.06", inclusive: "0.36"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComputeLine(tc.qty, decimal.RequireFromString(tc.price), decimal.RequireFromString(tc.rate))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if Format(got.Exclusive) != tc.exclusive {
				t.Fatalf("exclusive: expected %s got %s", tc.exclusive, Format(got.Exclusive))
			}
			if Format(got.Tax) != tc.tax {
				t.Fatalf("tax: expected %s got %s", tc.tax, Format(got.Tax))
			}
			if Format(got.Inclusive) != tc.inclusive {
				t.Fatalf("inclusive: expected %s got %s", tc.inclusive, Format(got.Inclusive))
			}
			if !got.Inclusive.Equal(got.Exclusive.Add(got.Tax)) {
				t.Fatalf("inclusive must equal exclusive + tax")
			}
		})
	}
}

func TestComputeLineRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		qty   int
		price string
		rate  string
		want  error
	}{
		{name: "zero quantity", qty: 0, price: "10", rate: "20", want: ErrInvalidQuantity},
		{name: "negative quantity", qty: -1, price: "10", rate: "20", want: ErrInvalidQuantity},
		{name: "negative price", qty: 1, price: "-0.01", rate: "20", want: ErrNegativePrice},
		{name: "negative rate", qty: 1, price: "10", rate: "-1", want: ErrNegativeTaxRate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeLine(tc.qty, decimal.RequireFromString(tc.price), decimal.RequireFromString(tc.rate))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLineTotalsAdd(t *testing.T) {
	a, _ := ComputeLine(2, decimal.NewFromInt(150), decimal.NewFromInt(20))
	b, _ := ComputeLine(1, decimal.NewFromInt(300), decimal.RequireFromString("5.5"))

	sum := a.Add(b)
	if Format(sum.Exclusive) != "600.00" || Format(sum.Tax) != "76.50" || Format(sum.Inclusive) != "676.50" {
		t.Fatalf("unexpected totals %s / %s / %s", Format(sum.Exclusive), Format(sum.Tax), Format(sum.Inclusive))
	}
}

func TestSumAndZero(t *testing.T) {
	if got := Format(Sum()); got != "0.00" {
		t.Fatalf("expected empty sum to be 0.00, got %s", got)
	}
	if got := Format(Sum(decimal.RequireFromString("0.10"), decimal.RequireFromString("0.20"))); got != "0.30" {
		t.Fatalf("expected 0.30, got %s", got)
	}
	if !Zero().IsZero() {
		t.Fatal("expected Zero to be zero")
	}
}

func TestCheckLineInput(t *testing.T) {
	tests := []struct {
		name  string
		qty   int
		price string
		rate  string
		want  error
	}{
		{name: "cents price and rate", qty: 3, price: "0.34", rate: "5.5", want: nil},
		{name: "trailing zeros", qty: 1, price: "12.500", rate: "20.00", want: nil},
		{name: "rate above one hundred", qty: 1, price: "10", rate: "1000", want: nil},
		{name: "upper bounds", qty: MaxQuantity, price: "9999999999.99", rate: "99999.99", want: nil},
		{name: "zero quantity", qty: 0, price: "10", rate: "20", want: ErrInvalidQuantity},
		{name: "quantity over cap", qty: MaxQuantity + 1, price: "10", rate: "20", want: ErrQuantityTooLarge},
		{name: "negative price", qty: 1, price: "-1", rate: "20", want: ErrNegativePrice},
		{name: "sub-cent price", qty: 3, price: "0.335", rate: "20", want: ErrPriceScale},
		{name: "price over column", qty: 1, price: "10000000000", rate: "20", want: ErrPriceTooLarge},
		{name: "negative rate", qty: 1, price: "10", rate: "-0.5", want: ErrNegativeTaxRate},
		{name: "sub-cent rate", qty: 1, price: "10", rate: "5.555", want: ErrTaxRateScale},
		{name: "rate over column", qty: 1, price: "10", rate: "100000", want: ErrTaxRateTooLarge},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckLineInput(tc.qty, decimal.RequireFromString(tc.price), decimal.RequireFromString(tc.rate))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestMaxLineFitsTotalColumn(t *testing.T) {
	got, err := ComputeLine(MaxQuantity, MaxUnitPrice, MaxTaxRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Inclusive.GreaterThan(MaxTotal) {
		t.Fatalf("largest line %s overflows the total column", got.Inclusive)
	}
}
