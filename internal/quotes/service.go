package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/angelmondragon/eventdesk-backend/pkg/db"
	"github.com/angelmondragon/eventdesk-backend/pkg/db/models"
	"github.com/angelmondragon/eventdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eventdesk-backend/pkg/errors"
	"github.com/angelmondragon/eventdesk-backend/pkg/logger"
	"github.com/angelmondragon/eventdesk-backend/pkg/money"
	"github.com/angelmondragon/eventdesk-backend/pkg/outbox"
	"github.com/angelmondragon/eventdesk-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/eventdesk-backend/pkg/pagination"
)

const maxReferenceAttempts = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes the quote use cases. Every call carries the caller explicitly.
type Service interface {
	CreateQuote(ctx context.Context, actor Actor, input CreateQuoteInput) (*models.Quote, error)
	AddLine(ctx context.Context, actor Actor, quoteID uuid.UUID, input LineInput) (*models.Quote, error)
	RemoveLine(ctx context.Context, actor Actor, quoteID, lineID uuid.UUID) (*models.Quote, error)
	UpdateFields(ctx context.Context, actor Actor, quoteID uuid.UUID, patch FieldsPatch) (*models.Quote, error)
	Send(ctx context.Context, actor Actor, quoteID uuid.UUID) (*models.Quote, error)
	MarkUnderReview(ctx context.Context, actor Actor, quoteID uuid.UUID) (*models.Quote, error)
	Accept(ctx context.Context, actor Actor, quoteID uuid.UUID) (*models.Quote, error)
	Refuse(ctx context.Context, actor Actor, quoteID uuid.UUID) (*models.Quote, error)
	RequestModification(ctx context.Context, actor Actor, quoteID uuid.UUID, reason string) (*models.Quote, error)
	Revise(ctx context.Context, actor Actor, quoteID uuid.UUID) (*models.Quote, error)
	GetByID(ctx context.Context, actor Actor, quoteID uuid.UUID) (*models.Quote, error)
	List(ctx context.Context, actor Actor, params ListParams) (*QuoteList, error)
	GenerateDocument(ctx context.Context, actor Actor, quoteID uuid.UUID) (*Document, error)
}

// ServiceParams wires the quote service dependencies.
type ServiceParams struct {
	Repository      Repository
	Tx              txRunner
	Outbox          outboxPublisher
	Renderer        DocumentRenderer
	Logger          *logger.Logger
	Metrics         MetricsRecorder
	DefaultTaxRate  decimal.Decimal
	ReferencePrefix string
	Clock           func() time.Time
}

type service struct {
	repo            Repository
	tx              txRunner
	outbox          outboxPublisher
	renderer        DocumentRenderer
	logg            *logger.Logger
	metrics         MetricsRecorder
	defaultTaxRate  decimal.Decimal
	referencePrefix string
	now             func() time.Time
}

// NewService builds a quote service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("quotes repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Renderer == nil {
		return nil, fmt.Errorf("document renderer required")
	}
	if params.DefaultTaxRate.IsNegative() {
		return nil, fmt.Errorf("default tax rate must not be negative")
	}

	rate := params.DefaultTaxRate
	if rate.IsZero() {
		rate = money.DefaultTaxRate
	}
	clock := params.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}

	return &service{
		repo:            params.Repository,
		tx:              params.Tx,
		outbox:          params.Outbox,
		renderer:        params.Renderer,
		logg:            params.Logger,
		metrics:         params.Metrics,
		defaultTaxRate:  rate,
		referencePrefix: params.ReferencePrefix,
		now:             clock,
	}, nil
}

func (s *service) CreateQuote(ctx context.Context, actor Actor, input CreateQuoteInput) (quote *models.Quote, err error) {
	defer s.observe("create", time.Now(), &err)

	if err := authenticate(actor); err != nil {
		return nil, err
	}
	if err := authorize(actor, nil, OpCreate); err != nil {
		return nil, err
	}
	if input.ClientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id is required").
			WithDetails(map[string]string{"client_id": "is required"})
	}

	now := s.now()
	if input.ValidUntil != nil {
		if err := validateValidUntil(*input.ValidUntil, now); err != nil {
			return nil, err
		}
	}

	draft := &models.Quote{
		ID:        uuid.New(),
		ClientID:  input.ClientID,
		EventID:   input.EventID,
		Status:    enums.QuoteStatusDraft,
		CreatedBy: actor.UserID,
		Message:   normalizeOptional(input.Message),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.ValidUntil != nil {
		v := input.ValidUntil.UTC()
		draft.ValidUntil = &v
	}
	for _, lineInput := range input.Lines {
		if _, err := addLine(draft, lineInput, s.defaultTaxRate); err != nil {
			return nil, err
		}
	}
	recomputeTotals(draft)

	for attempt := 1; attempt <= maxReferenceAttempts; attempt++ {
		draft.Reference = newReference(s.referencePrefix, now)
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			if _, err := s.repo.WithTx(tx).Create(ctx, draft); err != nil {
				return err
			}
			return s.outbox.Emit(ctx, tx, s.createdEvent(actor, draft))
		})
		if err == nil {
			break
		}
		if !dbpkg.IsUniqueViolation(err, "reference") || attempt == maxReferenceAttempts {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quote")
		}
	}

	s.logInfo(ctx, draft, "quote created", map[string]any{"reference": draft.Reference, "line_count": len(draft.Lines)})
	return s.reload(ctx, draft.ID)
}

func (s *service) AddLine(ctx context.Context, actor Actor, quoteID uuid.UUID, input LineInput) (quote *models.Quote, err error) {
	defer s.observe("add_line", time.Now(), &err)

	if err := authenticate(actor); err != nil {
		return nil, err
	}
	if quoteID == uuid.Nil {
		return nil, quoteIDRequired()
	}

	quote, err = s.repo.RunAtomic(ctx, quoteID, func(tx *gorm.DB, q *models.Quote) error {
		if err := authorize(actor, q, OpAddLine); err != nil {
			return err
		}
		_, err := addLine(q, input, s.defaultTaxRate)
		return err
	})
	if err != nil {
		return nil, mapRepoError(err, "add quote line")
	}
	s.logInfo(ctx, quote, "quote line added", map[string]any{"line_count": len(quote.Lines)})
	return quote, nil
}

func (s *service) RemoveLine(ctx context.Context, actor Actor, quoteID, lineID uuid.UUID) (quote *models.Quote, err error) {
	defer s.observe("remove_line", time.Now(), &err)

	if err := authenticate(actor); err != nil {
		return nil, err
	}
	if quoteID == uuid.Nil {
		return nil, quoteIDRequired()
	}
	if lineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line id is required")
	}

	quote, err = s.repo.RunAtomic(ctx, quoteID, func(tx *gorm.DB, q *models.Quote) error {
		if err := authorize(actor, q, OpRemoveLine); err != nil {
			return err
		}
		return removeLine(q, lineID)
	})
	if err != nil {
		return nil, mapRepoError(err, "remove quote line")
	}
	s.logInfo(ctx, quote, "quote line removed", map[string]any{"line_id": lineID.String()})
	return quote, nil
}

func (s *service) UpdateFields(ctx context.Context, actor Actor, quoteID uuid.UUID, patch FieldsPatch) (quote *models.Quote, err error) {
	defer s.observe("update_fields", time.Now(), &err)

	if err := authenticate(actor); err != nil {
		return nil, err
	}
	if quoteID == uuid.Nil {
		return nil, quoteIDRequired()
	}
	if patch.isEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	quote, err = s.repo.RunAtomic(ctx, quoteID, func(tx *gorm.DB, q *models.Quote) error {
		if err := authorize(actor, q, OpUpdateFields); err != nil {
			return err
		}
		return applyFields(q, patch)
	})
	if err != nil {
		return nil, mapRepoError(err, "update quote")
	}
	return quote, nil
}

func (s *service) Send(ctx context.Context, actor Actor, quoteID uuid.UUID) (*models.Quote, error) {
	return s.transition(ctx, actor, quoteID, enums.QuoteActionSend, "")
}

func (s *service) MarkUnderReview(ctx context.Context, actor Actor, quoteID uuid.UUID) (*models.Quote, error) {
	return s.transition(ctx, actor, quoteID, enums.QuoteActionReview, "")
}

func (s *service) Accept(ctx context.Context, actor Actor, quoteID uuid.UUID) (*models.Quote, error) {
	return s.transition(ctx, actor, quoteID, enums.QuoteActionAccept, "")
}

func (s *service) Refuse(ctx context.Context, actor Actor, quoteID uuid.UUID) (*models.Quote, error) {
	return s.transition(ctx, actor, quoteID, enums.QuoteActionRefuse, "")
}

func (s *service) RequestModification(ctx context.Context, actor Actor, quoteID uuid.UUID, reason string) (*models.Quote, error) {
	return s.transition(ctx, actor, quoteID, enums.QuoteActionRequestModification, reason)
}

func (s *service) Revise(ctx context.Context, actor Actor, quoteID uuid.UUID) (*models.Quote, error) {
	return s.transition(ctx, actor, quoteID, enums.QuoteActionRevise, "")
}

func (s *service) transition(ctx context.Context, actor Actor, quoteID uuid.UUID, action enums.QuoteAction, reason string) (quote *models.Quote, err error) {
	defer s.observe(action.String(), time.Now(), &err)

	if err := authenticate(actor); err != nil {
		return nil, err
	}
	if quoteID == uuid.Nil {
		return nil, quoteIDRequired()
	}
	if action == enums.QuoteActionRequestModification && strings.TrimSpace(reason) == "" {
		return nil, reasonRequiredError()
	}
	op, ok := actionOperations[action]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown quote action")
	}

	var from enums.QuoteStatus
	quote, err = s.repo.RunAtomic(ctx, quoteID, func(tx *gorm.DB, q *models.Quote) error {
		if err := authorize(actor, q, op); err != nil {
			return err
		}
		from = q.Status
		if err := applyTransition(q, action, reason, s.now()); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, s.statusChangedEvent(actor, q, action, from))
	})
	if err != nil {
		return nil, mapRepoError(err, "transition quote")
	}

	if s.metrics != nil {
		s.metrics.IncTransition(action.String(), from.String(), quote.Status.String())
	}
	s.logInfo(ctx, quote, "quote.transition", map[string]any{
		"action":      action,
		"from_status": from,
		"to_status":   quote.Status,
	})
	return quote, nil
}

func (s *service) GetByID(ctx context.Context, actor Actor, quoteID uuid.UUID) (quote *models.Quote, err error) {
	defer s.observe("get", time.Now(), &err)
	return s.loadAuthorized(ctx, actor, quoteID, OpRead)
}

func (s *service) List(ctx context.Context, actor Actor, params ListParams) (list *QuoteList, err error) {
	defer s.observe("list", time.Now(), &err)

	if err := authenticate(actor); err != nil {
		return nil, err
	}
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter").
			WithDetails(map[string]string{"status": "is invalid"})
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	filters, err := scopeFilters(actor, params)
	if err != nil {
		return nil, err
	}

	list, err = s.repo.List(ctx, params.Params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quotes")
	}
	return list, nil
}

func (s *service) GenerateDocument(ctx context.Context, actor Actor, quoteID uuid.UUID) (doc *Document, err error) {
	defer s.observe("generate_document", time.Now(), &err)

	quote, err := s.loadAuthorized(ctx, actor, quoteID, OpGenerateDocument)
	if err != nil {
		return nil, err
	}

	content, err := s.renderer.Render(ctx, quote)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render quote document")
	}
	return &Document{
		FileName:    quote.Reference + ".pdf",
		ContentType: s.renderer.ContentType(),
		Content:     content,
	}, nil
}

func (s *service) loadAuthorized(ctx context.Context, actor Actor, quoteID uuid.UUID, op Operation) (*models.Quote, error) {
	if err := authenticate(actor); err != nil {
		return nil, err
	}
	if quoteID == uuid.Nil {
		return nil, quoteIDRequired()
	}
	quote, err := s.repo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, mapRepoError(err, "load quote")
	}
	if err := authorize(actor, quote, op); err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *service) reload(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error) {
	quote, err := s.repo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, mapRepoError(err, "load quote")
	}
	return quote, nil
}

func (s *service) createdEvent(actor Actor, quote *models.Quote) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     enums.EventQuoteCreated,
		AggregateType: enums.AggregateQuote,
		AggregateID:   quote.ID,
		Actor:         actorRef(actor),
		Version:       1,
		OccurredAt:    s.now(),
		Data: payloads.QuoteCreatedEvent{
			QuoteID:        quote.ID,
			Reference:      quote.Reference,
			ClientID:       quote.ClientID,
			EventID:        quote.EventID,
			Status:         quote.Status,
			LineCount:      len(quote.Lines),
			TotalInclusive: money.Format(quote.TotalInclusive),
		},
	}
}

var transitionEvents = map[enums.QuoteAction]enums.OutboxEventType{
	enums.QuoteActionSend:                enums.EventQuoteSent,
	enums.QuoteActionReview:              enums.EventQuoteUnderReview,
	enums.QuoteActionAccept:              enums.EventQuoteAccepted,
	enums.QuoteActionRefuse:              enums.EventQuoteRefused,
	enums.QuoteActionRequestModification: enums.EventQuoteModificationRequested,
	enums.QuoteActionRevise:              enums.EventQuoteRevised,
}

func (s *service) statusChangedEvent(actor Actor, quote *models.Quote, action enums.QuoteAction, from enums.QuoteStatus) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     transitionEvents[action],
		AggregateType: enums.AggregateQuote,
		AggregateID:   quote.ID,
		Actor:         actorRef(actor),
		Version:       1,
		OccurredAt:    s.now(),
		Data: payloads.QuoteStatusChangedEvent{
			QuoteID:            quote.ID,
			Reference:          quote.Reference,
			ClientID:           quote.ClientID,
			Action:             action,
			PreviousStatus:     from,
			Status:             quote.Status,
			ModificationReason: quote.ModificationReason,
			TotalExclusive:     money.Format(quote.TotalExclusive),
			TotalTax:           money.Format(quote.TotalTax),
			TotalInclusive:     money.Format(quote.TotalInclusive),
		},
	}
}

func actorRef(actor Actor) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID:   actor.UserID,
		ClientID: actor.ClientID,
		Role:     actor.Role.String(),
	}
}

// observe records duration and outcome. It never affects the returned error.
func (s *service) observe(operation string, started time.Time, errp *error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	if errp != nil && *errp != nil {
		outcome = strings.ToLower(string(pkgerrors.CodeOf(*errp)))
	}
	s.metrics.ObserveOperation(operation, outcome, time.Since(started))
}

func (s *service) logInfo(ctx context.Context, quote *models.Quote, msg string, fields map[string]any) {
	if s.logg == nil || quote == nil {
		return
	}
	logCtx := s.logg.WithQuote(ctx, quote.ID.String(), quote.Reference)
	logCtx = s.logg.WithFields(logCtx, fields)
	s.logg.Info(logCtx, msg)
}

func quoteIDRequired() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "quote id is required")
}

// mapRepoError keeps typed domain errors and translates storage failures.
func mapRepoError(err error, action string) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
	}
	if errors.Is(err, ErrStaleQuote) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "quote was modified concurrently, retry")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
