package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type column of outbox_events.
type OutboxAggregateType string

const (
	AggregateQuote OutboxAggregateType = "quote"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateQuote,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type column of outbox_events.
type OutboxEventType string

const (
	EventQuoteCreated               OutboxEventType = "quote_created"
	EventQuoteSent                  OutboxEventType = "quote_sent"
	EventQuoteUnderReview           OutboxEventType = "quote_under_review"
	EventQuoteAccepted              OutboxEventType = "quote_accepted"
	EventQuoteRefused               OutboxEventType = "quote_refused"
	EventQuoteModificationRequested OutboxEventType = "quote_modification_requested"
	EventQuoteRevised               OutboxEventType = "quote_revised"
)

var validOutboxEventTypes = []OutboxEventType{
	EventQuoteCreated,
	EventQuoteSent,
	EventQuoteUnderReview,
	EventQuoteAccepted,
	EventQuoteRefused,
	EventQuoteModificationRequested,
	EventQuoteRevised,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
