package quotes

import (
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/eventdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eventdesk-backend/pkg/errors"
)

func adminActor() Actor {
	return Actor{Role: enums.ActorRoleAdmin, UserID: uuid.New()}
}

func clientActor(clientID uuid.UUID) Actor {
	return Actor{Role: enums.ActorRoleClient, UserID: uuid.New(), ClientID: &clientID}
}

func opsOf(set OperationSet) []Operation {
	return set.Sorted()
}

func TestPermittedOperations(t *testing.T) {
	quote := draftQuote()
	stranger := uuid.New()

	tests := []struct {
		name  string
		actor Actor
		quote bool
		want  []Operation
	}{
		{
			name:  "admin collection",
			actor: adminActor(),
			want:  []Operation{OpCreate, OpList},
		},
		{
			name:  "admin quote",
			actor: adminActor(),
			quote: true,
			want: []Operation{
				OpAccept, OpAddLine, OpGenerateDocument, OpRead, OpRefuse,
				OpRemoveLine, OpReview, OpRevise, OpSend, OpUpdateFields,
			},
		},
		{
			name:  "client collection",
			actor: clientActor(stranger),
			want:  []Operation{OpList},
		},
		{
			name:  "owning client",
			actor: clientActor(quote.ClientID),
			quote: true,
			want: []Operation{
				OpAccept, OpGenerateDocument, OpRead, OpRefuse, OpRequestModification, OpReview,
			},
		},
		{
			name:  "other client",
			actor: clientActor(stranger),
			quote: true,
			want:  []Operation{},
		},
		{
			name:  "client without client id",
			actor: Actor{Role: enums.ActorRoleClient, UserID: uuid.New()},
			quote: true,
			want:  []Operation{},
		},
		{
			name:  "employee",
			actor: Actor{Role: enums.ActorRoleEmployee, UserID: uuid.New()},
			quote: true,
			want:  []Operation{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			target := quote
			if !tc.quote {
				target = nil
			}
			got := opsOf(PermittedOperations(tc.actor, target))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestAdminCannotRequestModificationAndClientCannotSend(t *testing.T) {
	quote := draftQuote()
	if PermittedOperations(adminActor(), quote).Has(OpRequestModification) {
		t.Fatalf("admin must not request modifications")
	}
	owner := clientActor(quote.ClientID)
	for _, op := range []Operation{OpSend, OpAddLine, OpRemoveLine, OpUpdateFields, OpRevise, OpCreate} {
		if PermittedOperations(owner, quote).Has(op) {
			t.Fatalf("client must not be allowed %s", op)
		}
	}
}

func TestAuthenticate(t *testing.T) {
	if err := authenticate(Actor{}); pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := authenticate(Actor{Role: enums.ActorRoleAdmin}); pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized without user id, got %v", err)
	}
	if err := authenticate(adminActor()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestScopeFilters(t *testing.T) {
	own := uuid.New()
	other := uuid.New()
	sent := enums.QuoteStatusSent

	filters, err := scopeFilters(clientActor(own), ListParams{Status: &sent})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filters.ClientID == nil || *filters.ClientID != own {
		t.Fatalf("client listing must be scoped to own client id")
	}
	if filters.Status == nil || *filters.Status != sent {
		t.Fatalf("status filter lost")
	}

	if _, err := scopeFilters(clientActor(own), ListParams{ClientID: &other}); pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for foreign client filter, got %v", err)
	}

	filters, err = scopeFilters(adminActor(), ListParams{ClientID: &other})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filters.ClientID == nil || *filters.ClientID != other {
		t.Fatalf("admin filter must be kept")
	}

	if _, err := scopeFilters(Actor{Role: enums.ActorRoleEmployee, UserID: uuid.New()}, ListParams{}); pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for employee, got %v", err)
	}
}

func TestAllowedActions(t *testing.T) {
	quote := draftQuote()
	quote.Status = enums.QuoteStatusSent

	admin := AllowedActions(adminActor(), quote)
	wantAdmin := []enums.QuoteAction{enums.QuoteActionReview, enums.QuoteActionAccept, enums.QuoteActionRefuse}
	if !reflect.DeepEqual(admin, wantAdmin) {
		t.Fatalf("admin: expected %v, got %v", wantAdmin, admin)
	}

	owner := AllowedActions(clientActor(quote.ClientID), quote)
	wantOwner := []enums.QuoteAction{
		enums.QuoteActionReview, enums.QuoteActionAccept, enums.QuoteActionRefuse, enums.QuoteActionRequestModification,
	}
	if !reflect.DeepEqual(owner, wantOwner) {
		t.Fatalf("owner: expected %v, got %v", wantOwner, owner)
	}

	if got := AllowedActions(clientActor(uuid.New()), quote); len(got) != 0 {
		t.Fatalf("stranger must have no actions, got %v", got)
	}
	if got := AllowedActions(adminActor(), nil); got != nil {
		t.Fatalf("nil quote must yield nil")
	}
}
