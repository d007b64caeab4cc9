package quotes

import (
	"testing"
	"time"

	"github.com/angelmondragon/eventdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eventdesk-backend/pkg/errors"
)

func TestTransitionGraphClosure(t *testing.T) {
	allowed := map[enums.QuoteStatus]map[enums.QuoteAction]enums.QuoteStatus{
		enums.QuoteStatusDraft: {
			enums.QuoteActionSend: enums.QuoteStatusSent,
		},
		enums.QuoteStatusSent: {
			enums.QuoteActionReview:              enums.QuoteStatusUnderReview,
			enums.QuoteActionAccept:              enums.QuoteStatusAccepted,
			enums.QuoteActionRefuse:              enums.QuoteStatusRefused,
			enums.QuoteActionRequestModification: enums.QuoteStatusModificationRequested,
		},
		enums.QuoteStatusUnderReview: {
			enums.QuoteActionAccept:              enums.QuoteStatusAccepted,
			enums.QuoteActionRefuse:              enums.QuoteStatusRefused,
			enums.QuoteActionRequestModification: enums.QuoteStatusModificationRequested,
		},
		enums.QuoteStatusModificationRequested: {
			enums.QuoteActionRevise: enums.QuoteStatusDraft,
		},
	}

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	for _, status := range enums.QuoteStatuses() {
		for _, action := range enums.QuoteActions() {
			want, ok := allowed[status][action]

			next, got := NextStatus(status, action)
			if got != ok || next != want {
				t.Fatalf("NextStatus(%s, %s) = (%s, %v), want (%s, %v)", status, action, next, got, want, ok)
			}

			quote := draftQuote()
			quote.Status = status
			err := applyTransition(quote, action, "changer la date", now)
			if ok {
				if err != nil {
					t.Fatalf("%s --%s--> expected success, got %v", status, action, err)
				}
				if quote.Status != want {
					t.Fatalf("%s --%s--> expected %s got %s", status, action, want, quote.Status)
				}
				continue
			}
			if pkgerrors.CodeOf(err) != pkgerrors.CodeConflict {
				t.Fatalf("%s --%s--> expected conflict, got %v", status, action, err)
			}
			if quote.Status != status {
				t.Fatalf("%s --%s--> status changed on rejected transition", status, action)
			}
		}
	}
}

func TestTerminalStatusesHaveNoActions(t *testing.T) {
	for _, status := range enums.QuoteStatuses() {
		actions := AvailableActions(status)
		if status.IsTerminal() && len(actions) != 0 {
			t.Fatalf("%s is terminal but allows %v", status, actions)
		}
		if !status.IsTerminal() && len(actions) == 0 {
			t.Fatalf("%s is not terminal but allows nothing", status)
		}
	}
}

func TestApplyTransitionStampsFields(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	quote := draftQuote()
	if err := applyTransition(quote, enums.QuoteActionSend, "", now); err != nil {
		t.Fatalf("send: %v", err)
	}
	if quote.SentAt == nil || !quote.SentAt.Equal(now) {
		t.Fatalf("sent_at not stamped")
	}

	if err := applyTransition(quote, enums.QuoteActionRequestModification, "  moins de chaises ", now); err != nil {
		t.Fatalf("request modification: %v", err)
	}
	if quote.ModificationReason == nil || *quote.ModificationReason != "moins de chaises" {
		t.Fatalf("reason not recorded: %v", quote.ModificationReason)
	}
	if quote.RespondedAt == nil {
		t.Fatalf("responded_at not stamped")
	}

	if err := applyTransition(quote, enums.QuoteActionRevise, "", now); err != nil {
		t.Fatalf("revise: %v", err)
	}
	if quote.Status != enums.QuoteStatusDraft || quote.ModificationReason != nil {
		t.Fatalf("revise must return to draft and clear the reason")
	}
}

func TestRequestModificationRequiresReason(t *testing.T) {
	quote := draftQuote()
	quote.Status = enums.QuoteStatusSent

	for _, reason := range []string{"", "   "} {
		err := applyTransition(quote, enums.QuoteActionRequestModification, reason, time.Now())
		if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %q, got %v", reason, err)
		}
		if quote.Status != enums.QuoteStatusSent {
			t.Fatalf("status changed without a reason")
		}
	}
}

func TestApplyTransitionUnknownAction(t *testing.T) {
	quote := draftQuote()
	if err := applyTransition(quote, enums.QuoteAction("archive"), "", time.Now()); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
