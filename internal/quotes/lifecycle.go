package quotes

import (
	"strings"
	"time"

	"github.com/angelmondragon/eventdesk-backend/pkg/db/models"
	"github.com/angelmondragon/eventdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eventdesk-backend/pkg/errors"
)

type transition struct {
	from []enums.QuoteStatus
	to   enums.QuoteStatus
}

func (t transition) allows(status enums.QuoteStatus) bool {
	for _, candidate := range t.from {
		if candidate == status {
			return true
		}
	}
	return false
}

// transitions is the complete lifecycle graph. Pairs absent here are rejected.
var transitions = map[enums.QuoteAction]transition{
	enums.QuoteActionSend: {
		from: []enums.QuoteStatus{enums.QuoteStatusDraft},
		to:   enums.QuoteStatusSent,
	},
	enums.QuoteActionReview: {
		from: []enums.QuoteStatus{enums.QuoteStatusSent},
		to:   enums.QuoteStatusUnderReview,
	},
	enums.QuoteActionAccept: {
		from: []enums.QuoteStatus{enums.QuoteStatusSent, enums.QuoteStatusUnderReview},
		to:   enums.QuoteStatusAccepted,
	},
	enums.QuoteActionRefuse: {
		from: []enums.QuoteStatus{enums.QuoteStatusSent, enums.QuoteStatusUnderReview},
		to:   enums.QuoteStatusRefused,
	},
	enums.QuoteActionRequestModification: {
		from: []enums.QuoteStatus{enums.QuoteStatusSent, enums.QuoteStatusUnderReview},
		to:   enums.QuoteStatusModificationRequested,
	},
	enums.QuoteActionRevise: {
		from: []enums.QuoteStatus{enums.QuoteStatusModificationRequested},
		to:   enums.QuoteStatusDraft,
	},
}

// NextStatus reports where action leads from current, if anywhere.
func NextStatus(current enums.QuoteStatus, action enums.QuoteAction) (enums.QuoteStatus, bool) {
	t, ok := transitions[action]
	if !ok || !t.allows(current) {
		return "", false
	}
	return t.to, true
}

// AvailableActions lists the actions the graph allows from current.
func AvailableActions(current enums.QuoteStatus) []enums.QuoteAction {
	var out []enums.QuoteAction
	for _, action := range enums.QuoteActions() {
		if _, ok := NextStatus(current, action); ok {
			out = append(out, action)
		}
	}
	return out
}

// applyTransition moves the quote along the graph and stamps side fields.
// The quote is left untouched on error.
func applyTransition(quote *models.Quote, action enums.QuoteAction, reason string, now time.Time) error {
	t, ok := transitions[action]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown quote action")
	}

	var trimmedReason string
	if action == enums.QuoteActionRequestModification {
		trimmedReason = strings.TrimSpace(reason)
		if trimmedReason == "" {
			return reasonRequiredError()
		}
	}

	if !t.allows(quote.Status) {
		return pkgerrors.New(pkgerrors.CodeConflict, "cannot transition from this status").
			WithDetails(map[string]string{
				"status": quote.Status.String(),
				"action": action.String(),
			})
	}

	switch action {
	case enums.QuoteActionSend:
		quote.SentAt = &now
	case enums.QuoteActionAccept, enums.QuoteActionRefuse:
		quote.RespondedAt = &now
	case enums.QuoteActionRequestModification:
		quote.RespondedAt = &now
		quote.ModificationReason = &trimmedReason
	case enums.QuoteActionRevise:
		quote.ModificationReason = nil
	}
	quote.Status = t.to
	return nil
}

func reasonRequiredError() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "modification reason is required").
		WithDetails(map[string]string{"reason": "is required"})
}
