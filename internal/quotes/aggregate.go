package quotes

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eventdesk-backend/pkg/db/models"
	"github.com/angelmondragon/eventdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eventdesk-backend/pkg/errors"
	"github.com/angelmondragon/eventdesk-backend/pkg/money"
)

const maxLabelLength = 255

func linesLockedError() error {
	return pkgerrors.New(pkgerrors.CodeConflict, "lines can only be changed while the quote is a draft")
}

// addLine appends a priced line to a draft quote and refreshes its totals.
func addLine(quote *models.Quote, input LineInput, defaultRate decimal.Decimal) (*models.QuoteLine, error) {
	if quote.Status != enums.QuoteStatusDraft {
		return nil, linesLockedError()
	}
	line, err := buildLine(quote.ID, input, defaultRate, nextPosition(quote.Lines))
	if err != nil {
		return nil, err
	}
	if quote.TotalInclusive.Add(line.TotalInclusive).GreaterThan(money.MaxTotal) {
		return nil, lineValidationError("unit_price", money.ErrTotalTooLarge.Error())
	}
	quote.Lines = append(quote.Lines, *line)
	recomputeTotals(quote)
	return line, nil
}

// removeLine drops a line from a draft quote and refreshes its totals.
func removeLine(quote *models.Quote, lineID uuid.UUID) error {
	if quote.Status != enums.QuoteStatusDraft {
		return linesLockedError()
	}
	idx := -1
	for i := range quote.Lines {
		if quote.Lines[i].ID == lineID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "quote line not found")
	}
	quote.Lines = append(quote.Lines[:idx], quote.Lines[idx+1:]...)
	recomputeTotals(quote)
	return nil
}

// recomputeTotals re-sums every line into the quote totals.
func recomputeTotals(quote *models.Quote) {
	total := money.LineTotals{
		Exclusive: money.Zero(),
		Tax:       money.Zero(),
		Inclusive: money.Zero(),
	}
	for _, line := range quote.Lines {
		total = total.Add(money.LineTotals{
			Exclusive: line.TotalExclusive,
			Tax:       line.TotalTax,
			Inclusive: line.TotalInclusive,
		})
	}
	quote.TotalExclusive = total.Exclusive
	quote.TotalTax = total.Tax
	quote.TotalInclusive = total.Inclusive
}

// applyFields updates message and validity. Status is never touched here.
func applyFields(quote *models.Quote, patch FieldsPatch) error {
	if patch.isEmpty() {
		return pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	if patch.ValidUntil != nil && patch.ClearValidUntil {
		return pkgerrors.New(pkgerrors.CodeValidation, "valid_until cannot be set and cleared at once")
	}
	if patch.ValidUntil != nil {
		if err := validateValidUntil(*patch.ValidUntil, quote.CreatedAt); err != nil {
			return err
		}
		v := patch.ValidUntil.UTC()
		quote.ValidUntil = &v
	}
	if patch.ClearValidUntil {
		quote.ValidUntil = nil
	}
	if patch.Message != nil {
		quote.Message = normalizeOptional(patch.Message)
	}
	return nil
}

func validateValidUntil(validUntil, createdAt time.Time) error {
	if !createdAt.IsZero() && validUntil.Before(createdAt) {
		return pkgerrors.New(pkgerrors.CodeValidation, "valid_until must not precede the quote creation date").
			WithDetails(map[string]string{"valid_until": "must be after created_at"})
	}
	return nil
}

func buildLine(quoteID uuid.UUID, input LineInput, defaultRate decimal.Decimal, position int) (*models.QuoteLine, error) {
	label := strings.TrimSpace(input.Label)
	if label == "" {
		return nil, lineValidationError("label", "is required")
	}
	if utf8.RuneCountInString(label) > maxLabelLength {
		return nil, lineValidationError("label", "must be at most 255 characters")
	}
	if input.UnitPrice == nil {
		return nil, lineValidationError("unit_price", "is required")
	}

	quantity := money.DefaultQuantity
	if input.Quantity != nil {
		quantity = *input.Quantity
	}
	rate := defaultRate
	if input.TaxRate != nil {
		rate = *input.TaxRate
	}

	if err := money.CheckLineInput(quantity, *input.UnitPrice, rate); err != nil {
		return nil, moneyValidationError(err)
	}
	totals, err := money.ComputeLine(quantity, *input.UnitPrice, rate)
	if err != nil {
		return nil, moneyValidationError(err)
	}

	return &models.QuoteLine{
		ID:             uuid.New(),
		QuoteID:        quoteID,
		Label:          label,
		Description:    normalizeOptional(input.Description),
		Quantity:       quantity,
		UnitPrice:      *input.UnitPrice,
		TaxRate:        rate,
		TotalExclusive: totals.Exclusive,
		TotalTax:       totals.Tax,
		TotalInclusive: totals.Inclusive,
		Position:       position,
	}, nil
}

func nextPosition(lines []models.QuoteLine) int {
	next := 0
	for _, line := range lines {
		if line.Position >= next {
			next = line.Position + 1
		}
	}
	return next
}

func moneyValidationError(err error) error {
	switch {
	case errors.Is(err, money.ErrInvalidQuantity), errors.Is(err, money.ErrQuantityTooLarge):
		return lineValidationError("quantity", err.Error())
	case errors.Is(err, money.ErrNegativePrice), errors.Is(err, money.ErrPriceScale), errors.Is(err, money.ErrPriceTooLarge):
		return lineValidationError("unit_price", err.Error())
	case errors.Is(err, money.ErrNegativeTaxRate), errors.Is(err, money.ErrTaxRateScale), errors.Is(err, money.ErrTaxRateTooLarge):
		return lineValidationError("tax_rate", err.Error())
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid line")
}

func lineValidationError(field, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid line").
		WithDetails(map[string]string{field: message})
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
