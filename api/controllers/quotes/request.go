package quotes

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eventdesk-backend/api/middleware"
	"github.com/angelmondragon/eventdesk-backend/api/validators"
	internalquotes "github.com/angelmondragon/eventdesk-backend/internal/quotes"
	"github.com/angelmondragon/eventdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eventdesk-backend/pkg/errors"
	"github.com/angelmondragon/eventdesk-backend/pkg/pagination"
)

// lineRequest accepts amounts as JSON numbers or strings.
type lineRequest struct {
	Label       string           `json:"label" validate:"required"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
	Quantity    *int             `json:"quantity,omitempty"`
	UnitPrice   *decimal.Decimal `json:"unit_price" validate:"required"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
}

func (l lineRequest) toInput() internalquotes.LineInput {
	return internalquotes.LineInput{
		Label:       l.Label,
		Description: validators.SanitizeOptional(l.Description),
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
		TaxRate:     l.TaxRate,
	}
}

type createQuoteRequest struct {
	ClientID   string        `json:"client_id" validate:"required,uuid"`
	EventID    *string       `json:"event_id,omitempty" validate:"omitempty,uuid"`
	ValidUntil *time.Time    `json:"valid_until,omitempty"`
	Message    *string       `json:"message,omitempty" validate:"omitempty,max=5000"`
	Lines      []lineRequest `json:"lines,omitempty" validate:"dive"`
}

func (r createQuoteRequest) toInput() (internalquotes.CreateQuoteInput, error) {
	clientID, err := validators.ParsePathUUID(r.ClientID, "client_id")
	if err != nil {
		return internalquotes.CreateQuoteInput{}, err
	}
	input := internalquotes.CreateQuoteInput{
		ClientID:   clientID,
		ValidUntil: r.ValidUntil,
		Message:    validators.SanitizeOptional(r.Message),
		Lines:      make([]internalquotes.LineInput, 0, len(r.Lines)),
	}
	if r.EventID != nil {
		eventID, err := validators.ParsePathUUID(*r.EventID, "event_id")
		if err != nil {
			return internalquotes.CreateQuoteInput{}, err
		}
		input.EventID = &eventID
	}
	for _, line := range r.Lines {
		input.Lines = append(input.Lines, line.toInput())
	}
	return input, nil
}

type updateFieldsRequest struct {
	Message         *string    `json:"message,omitempty" validate:"omitempty,max=5000"`
	ValidUntil      *time.Time `json:"valid_until,omitempty"`
	ClearValidUntil bool       `json:"clear_valid_until,omitempty"`
}

func (r updateFieldsRequest) toPatch() internalquotes.FieldsPatch {
	patch := internalquotes.FieldsPatch{
		ValidUntil:      r.ValidUntil,
		ClearValidUntil: r.ClearValidUntil,
	}
	if r.Message != nil {
		msg := validators.SanitizeString(*r.Message)
		patch.Message = &msg
	}
	return patch
}

type modificationRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

// actorFromRequest builds the caller from the claims seeded by middleware.Auth.
func actorFromRequest(r *http.Request) (internalquotes.Actor, error) {
	ctx := r.Context()
	userID, err := uuid.Parse(middleware.UserIDFromContext(ctx))
	if err != nil {
		return internalquotes.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller identity missing")
	}
	role, err := enums.ParseActorRole(middleware.RoleFromContext(ctx))
	if err != nil {
		return internalquotes.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller role missing")
	}
	actor := internalquotes.Actor{Role: role, UserID: userID}
	if raw := middleware.ClientIDFromContext(ctx); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			return internalquotes.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid client identity")
		}
		actor.ClientID = &clientID
	}
	return actor, nil
}

func listParamsFromRequest(r *http.Request) (internalquotes.ListParams, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return internalquotes.ListParams{}, err
	}
	params := internalquotes.ListParams{
		Params: pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		},
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseQuoteStatus(raw)
		if err != nil {
			return internalquotes.ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter").
				WithDetails(map[string]any{"field": "status"})
		}
		params.Status = &status
	}
	clientID, err := validators.ParseQueryUUID(r, "client_id")
	if err != nil {
		return internalquotes.ListParams{}, err
	}
	params.ClientID = clientID
	return params, nil
}
