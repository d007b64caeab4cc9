// Package registry maps outbox rows to broker topics and typed payloads.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/eventdesk-backend/pkg/config"
	"github.com/angelmondragon/eventdesk-backend/pkg/db/models"
	"github.com/angelmondragon/eventdesk-backend/pkg/enums"
	"github.com/angelmondragon/eventdesk-backend/pkg/outbox"
	"github.com/angelmondragon/eventdesk-backend/pkg/outbox/payloads"
)

// NonRetryableError marks a row that will fail the same way on every attempt.
type NonRetryableError struct {
	Err error
}

func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}

func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

func (e NonRetryableError) Unwrap() error { return e.Err }

func permanent(format string, args ...any) error {
	return NewNonRetryableError(fmt.Errorf(format, args...))
}

type decoder func(json.RawMessage) (any, error)

// decodeAs builds a decoder that unmarshals into a fresh *T.
func decodeAs[T any]() decoder {
	return func(raw json.RawMessage) (any, error) {
		out := new(T)
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, err
		}
		return out, nil
	}
}

// EventDescriptor says where an event type is published and how its data
// decodes.
type EventDescriptor struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	Topic         string
	decode        decoder
}

type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    any
}

type EventRegistry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NewEventRegistry registers every quote lifecycle event on the quotes topic.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	topic := strings.TrimSpace(cfg.QuotesTopic)
	if topic == "" {
		return nil, errors.New("quotes topic is required")
	}

	catalog := map[enums.OutboxEventType]decoder{
		enums.EventQuoteCreated:               decodeAs[payloads.QuoteCreatedEvent](),
		enums.EventQuoteSent:                  decodeAs[payloads.QuoteStatusChangedEvent](),
		enums.EventQuoteUnderReview:           decodeAs[payloads.QuoteStatusChangedEvent](),
		enums.EventQuoteAccepted:              decodeAs[payloads.QuoteStatusChangedEvent](),
		enums.EventQuoteRefused:               decodeAs[payloads.QuoteStatusChangedEvent](),
		enums.EventQuoteModificationRequested: decodeAs[payloads.QuoteStatusChangedEvent](),
		enums.EventQuoteRevised:               decodeAs[payloads.QuoteStatusChangedEvent](),
	}
	reg := &EventRegistry{entries: make(map[enums.OutboxEventType]EventDescriptor, len(catalog))}
	for eventType, decode := range catalog {
		reg.entries[eventType] = EventDescriptor{
			EventType:     eventType,
			AggregateType: enums.AggregateQuote,
			Topic:         topic,
			decode:        decode,
		}
	}
	return reg, nil
}

// Resolve checks the row against its descriptor and decodes the payload.
// Every failure is a NonRetryableError.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[event.EventType]
	switch {
	case !ok:
		return nil, permanent("unsupported event type %s", event.EventType)
	case desc.AggregateType != event.AggregateType:
		return nil, permanent("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType)
	case event.AggregateID == uuid.Nil:
		return nil, permanent("missing aggregate_id")
	}

	envelope, err := outbox.DecodeEnvelope(event.Payload)
	if err != nil {
		return nil, permanent("%s: %w", event.EventType, err)
	}
	payload, err := desc.decode(envelope.Data)
	if err != nil {
		return nil, permanent("decode %s payload: %w", event.EventType, err)
	}
	return &ResolvedEvent{Descriptor: desc, Envelope: envelope, Payload: payload}, nil
}
