package quotes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/eventdesk-backend/api/responses"
	"github.com/angelmondragon/eventdesk-backend/api/validators"
	internalquotes "github.com/angelmondragon/eventdesk-backend/internal/quotes"
	"github.com/angelmondragon/eventdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/eventdesk-backend/pkg/errors"
	"github.com/angelmondragon/eventdesk-backend/pkg/logger"
)

type quoteHandlerFunc func(svc internalquotes.Service, r *http.Request, actor internalquotes.Actor, quoteID uuid.UUID) (*models.Quote, error)

// List returns a page of quotes visible to the caller.
func List(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotes service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := listParamsFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newQuoteListResponse(actor, list))
	}
}

// Create opens a new draft quote, optionally seeded with lines.
func Create(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotes service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createQuoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.CreateQuote(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newQuoteResponse(actor, quote))
	}
}

// Detail returns a single quote with its lines and the caller's capabilities.
func Detail(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return withQuote(svc, logg, http.StatusOK, func(svc internalquotes.Service, r *http.Request, actor internalquotes.Actor, quoteID uuid.UUID) (*models.Quote, error) {
		return svc.GetByID(r.Context(), actor, quoteID)
	})
}

// UpdateFields patches the message and validity deadline.
func UpdateFields(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return withQuote(svc, logg, http.StatusOK, func(svc internalquotes.Service, r *http.Request, actor internalquotes.Actor, quoteID uuid.UUID) (*models.Quote, error) {
		var req updateFieldsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			return nil, err
		}
		return svc.UpdateFields(r.Context(), actor, quoteID, req.toPatch())
	})
}

func AddLine(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return withQuote(svc, logg, http.StatusCreated, func(svc internalquotes.Service, r *http.Request, actor internalquotes.Actor, quoteID uuid.UUID) (*models.Quote, error) {
		var req lineRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			return nil, err
		}
		return svc.AddLine(r.Context(), actor, quoteID, req.toInput())
	})
}

func RemoveLine(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return withQuote(svc, logg, http.StatusOK, func(svc internalquotes.Service, r *http.Request, actor internalquotes.Actor, quoteID uuid.UUID) (*models.Quote, error) {
		lineID, err := validators.ParsePathUUID(chi.URLParam(r, "lineId"), "lineId")
		if err != nil {
			return nil, err
		}
		return svc.RemoveLine(r.Context(), actor, quoteID, lineID)
	})
}

func Send(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return withQuote(svc, logg, http.StatusOK, func(svc internalquotes.Service, r *http.Request, actor internalquotes.Actor, quoteID uuid.UUID) (*models.Quote, error) {
		return svc.Send(r.Context(), actor, quoteID)
	})
}

func Review(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return withQuote(svc, logg, http.StatusOK, func(svc internalquotes.Service, r *http.Request, actor internalquotes.Actor, quoteID uuid.UUID) (*models.Quote, error) {
		return svc.MarkUnderReview(r.Context(), actor, quoteID)
	})
}

func Accept(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return withQuote(svc, logg, http.StatusOK, func(svc internalquotes.Service, r *http.Request, actor internalquotes.Actor, quoteID uuid.UUID) (*models.Quote, error) {
		return svc.Accept(r.Context(), actor, quoteID)
	})
}

func Refuse(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return withQuote(svc, logg, http.StatusOK, func(svc internalquotes.Service, r *http.Request, actor internalquotes.Actor, quoteID uuid.UUID) (*models.Quote, error) {
		return svc.Refuse(r.Context(), actor, quoteID)
	})
}

// RequestModification records the client's reason and hands the quote back to the agency.
func RequestModification(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return withQuote(svc, logg, http.StatusOK, func(svc internalquotes.Service, r *http.Request, actor internalquotes.Actor, quoteID uuid.UUID) (*models.Quote, error) {
		var req modificationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			return nil, err
		}
		return svc.RequestModification(r.Context(), actor, quoteID, validators.SanitizeString(req.Reason))
	})
}

func Revise(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return withQuote(svc, logg, http.StatusOK, func(svc internalquotes.Service, r *http.Request, actor internalquotes.Actor, quoteID uuid.UUID) (*models.Quote, error) {
		return svc.Revise(r.Context(), actor, quoteID)
	})
}

// Document streams the rendered PDF.
func Document(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotes service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quoteID, err := quoteIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doc, err := svc.GenerateDocument(r.Context(), actor, quoteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteFile(w, doc.FileName, doc.ContentType, doc.Content)
	}
}

func withQuote(svc internalquotes.Service, logg *logger.Logger, status int, fn quoteHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotes service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quoteID, err := quoteIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := fn(svc, r, actor, quoteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, status, newQuoteResponse(actor, quote))
	}
}

func quoteIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "quoteId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "quote id is required")
	}
	return validators.ParsePathUUID(raw, "quoteId")
}
