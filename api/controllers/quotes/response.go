package quotes

import (
	"time"

	"github.com/google/uuid"

	internalquotes "github.com/angelmondragon/eventdesk-backend/internal/quotes"
	"github.com/angelmondragon/eventdesk-backend/pkg/db/models"
	"github.com/angelmondragon/eventdesk-backend/pkg/enums"
	"github.com/angelmondragon/eventdesk-backend/pkg/money"
)

// Amounts are rendered as fixed two-decimal strings.
type lineResponse struct {
	ID             uuid.UUID `json:"id"`
	Label          string    `json:"label"`
	Description    *string   `json:"description,omitempty"`
	Quantity       int       `json:"quantity"`
	UnitPrice      string    `json:"unit_price"`
	TaxRate        string    `json:"tax_rate"`
	TotalExclusive string    `json:"total_exclusive"`
	TotalTax       string    `json:"total_tax"`
	TotalInclusive string    `json:"total_inclusive"`
	Position       int       `json:"position"`
}

type quoteResponse struct {
	ID                  uuid.UUID           `json:"id"`
	Reference           string              `json:"reference"`
	ClientID            uuid.UUID           `json:"client_id"`
	EventID             *uuid.UUID          `json:"event_id,omitempty"`
	Status              enums.QuoteStatus   `json:"status"`
	CreatedBy           uuid.UUID           `json:"created_by"`
	ValidUntil          *time.Time          `json:"valid_until,omitempty"`
	Message             *string             `json:"message,omitempty"`
	ModificationReason  *string             `json:"modification_reason,omitempty"`
	TotalExclusive      string              `json:"total_exclusive"`
	TotalTax            string              `json:"total_tax"`
	TotalInclusive      string              `json:"total_inclusive"`
	Version             int                 `json:"version"`
	SentAt              *time.Time          `json:"sent_at,omitempty"`
	RespondedAt         *time.Time          `json:"responded_at,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
	Lines               []lineResponse      `json:"lines"`
	PermittedOperations []string            `json:"permitted_operations"`
	AllowedActions      []enums.QuoteAction `json:"allowed_actions"`
}

type quoteListResponse struct {
	Items      []quoteResponse `json:"items"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

func newQuoteResponse(actor internalquotes.Actor, quote *models.Quote) quoteResponse {
	resp := quoteResponse{
		ID:                 quote.ID,
		Reference:          quote.Reference,
		ClientID:           quote.ClientID,
		EventID:            quote.EventID,
		Status:             quote.Status,
		CreatedBy:          quote.CreatedBy,
		ValidUntil:         quote.ValidUntil,
		Message:            quote.Message,
		ModificationReason: quote.ModificationReason,
		TotalExclusive:     money.Format(quote.TotalExclusive),
		TotalTax:           money.Format(quote.TotalTax),
		TotalInclusive:     money.Format(quote.TotalInclusive),
		Version:            quote.Version,
		SentAt:             quote.SentAt,
		RespondedAt:        quote.RespondedAt,
		CreatedAt:          quote.CreatedAt,
		UpdatedAt:          quote.UpdatedAt,
		Lines:              make([]lineResponse, 0, len(quote.Lines)),
		AllowedActions:     internalquotes.AllowedActions(actor, quote),
	}
	for _, line := range quote.Lines {
		resp.Lines = append(resp.Lines, lineResponse{
			ID:             line.ID,
			Label:          line.Label,
			Description:    line.Description,
			Quantity:       line.Quantity,
			UnitPrice:      money.Format(line.UnitPrice),
			TaxRate:        money.Format(line.TaxRate),
			TotalExclusive: money.Format(line.TotalExclusive),
			TotalTax:       money.Format(line.TotalTax),
			TotalInclusive: money.Format(line.TotalInclusive),
			Position:       line.Position,
		})
	}
	for _, op := range internalquotes.PermittedOperations(actor, quote).Sorted() {
		resp.PermittedOperations = append(resp.PermittedOperations, string(op))
	}
	if resp.PermittedOperations == nil {
		resp.PermittedOperations = []string{}
	}
	if resp.AllowedActions == nil {
		resp.AllowedActions = []enums.QuoteAction{}
	}
	return resp
}

func newQuoteListResponse(actor internalquotes.Actor, list *internalquotes.QuoteList) quoteListResponse {
	resp := quoteListResponse{Items: make([]quoteResponse, 0, len(list.Items))}
	for i := range list.Items {
		resp.Items = append(resp.Items, newQuoteResponse(actor, &list.Items[i]))
	}
	resp.NextCursor = list.NextCursor
	return resp
}
