package quotes

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eventdesk-backend/pkg/db/models"
	"github.com/angelmondragon/eventdesk-backend/pkg/enums"
	"github.com/angelmondragon/eventdesk-backend/pkg/pagination"
)

// Actor is the authenticated caller on whose behalf a use case runs.
// ClientID is set for client accounts and compared against Quote.ClientID.
type Actor struct {
	Role     enums.ActorRole
	UserID   uuid.UUID
	ClientID *uuid.UUID
}

// LineInput describes a line to add. Nil Quantity and TaxRate fall back to defaults.
type LineInput struct {
	Label       string
	Description *string
	Quantity    *int
	UnitPrice   *decimal.Decimal
	TaxRate     *decimal.Decimal
}

// CreateQuoteInput carries the payload of a new draft quote.
type CreateQuoteInput struct {
	ClientID   uuid.UUID
	EventID    *uuid.UUID
	ValidUntil *time.Time
	Message    *string
	Lines      []LineInput
}

// FieldsPatch updates non-structural attributes. An empty Message clears it.
type FieldsPatch struct {
	Message         *string
	ValidUntil      *time.Time
	ClearValidUntil bool
}

func (p FieldsPatch) isEmpty() bool {
	return p.Message == nil && p.ValidUntil == nil && !p.ClearValidUntil
}

// ListParams holds the list filters and cursor pagination inputs.
type ListParams struct {
	pagination.Params
	Status   *enums.QuoteStatus
	ClientID *uuid.UUID
}

// ListFilters is the repository-level filter after role scoping.
type ListFilters struct {
	Status   *enums.QuoteStatus
	ClientID *uuid.UUID
}

// QuoteList is a single page of quotes.
type QuoteList struct {
	Items      []models.Quote
	NextCursor string
}

// Document is a rendered quote ready to be streamed to the caller.
type Document struct {
	FileName    string
	ContentType string
	Content     []byte
}
