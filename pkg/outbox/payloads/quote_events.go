package payloads

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/eventdesk-backend/pkg/enums"
)

// QuoteCreatedEvent is emitted when an admin opens a new draft quote.
type QuoteCreatedEvent struct {
	QuoteID        uuid.UUID         `json:"quote_id"`
	Reference      string            `json:"reference"`
	ClientID       uuid.UUID         `json:"client_id"`
	EventID        *uuid.UUID        `json:"event_id,omitempty"`
	Status         enums.QuoteStatus `json:"status"`
	LineCount      int               `json:"line_count"`
	TotalInclusive string            `json:"total_inclusive"`
}

// QuoteStatusChangedEvent is emitted for every lifecycle transition. The
// notification collaborator uses it to email the client or the agency.
type QuoteStatusChangedEvent struct {
	QuoteID            uuid.UUID         `json:"quote_id"`
	Reference          string            `json:"reference"`
	ClientID           uuid.UUID         `json:"client_id"`
	Action             enums.QuoteAction `json:"action"`
	PreviousStatus     enums.QuoteStatus `json:"previous_status"`
	Status             enums.QuoteStatus `json:"status"`
	ModificationReason *string           `json:"modification_reason,omitempty"`
	TotalExclusive     string            `json:"total_exclusive"`
	TotalTax           string            `json:"total_tax"`
	TotalInclusive     string            `json:"total_inclusive"`
}
