package quotes

import (
	"sort"

	"github.com/google/uuid"

	"github.com/angelmondragon/eventdesk-backend/pkg/db/models"
	"github.com/angelmondragon/eventdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/eventdesk-backend/pkg/errors"
)

// Operation is a capability checked by the authorization gate.
type Operation string

const (
	OpCreate              Operation = "create"
	OpRead                Operation = "read"
	OpList                Operation = "list"
	OpAddLine             Operation = "add_line"
	OpRemoveLine          Operation = "remove_line"
	OpUpdateFields        Operation = "update_fields"
	OpSend                Operation = "send"
	OpReview              Operation = "review"
	OpAccept              Operation = "accept"
	OpRefuse              Operation = "refuse"
	OpRequestModification Operation = "request_modification"
	OpRevise              Operation = "revise"
	OpGenerateDocument    Operation = "generate_document"
)

// OperationSet is the capability set returned by PermittedOperations.
type OperationSet map[Operation]struct{}

func newOperationSet(ops ...Operation) OperationSet {
	set := make(OperationSet, len(ops))
	for _, op := range ops {
		set[op] = struct{}{}
	}
	return set
}

// Has reports whether op is permitted.
func (s OperationSet) Has(op Operation) bool {
	_, ok := s[op]
	return ok
}

// Sorted returns the operations in a stable order.
func (s OperationSet) Sorted() []Operation {
	out := make([]Operation, 0, len(s))
	for op := range s {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var (
	adminCollectionOps = []Operation{OpCreate, OpList}
	adminQuoteOps      = []Operation{
		OpRead, OpAddLine, OpRemoveLine, OpUpdateFields, OpSend, OpReview,
		OpAccept, OpRefuse, OpRevise, OpGenerateDocument,
	}
	clientCollectionOps = []Operation{OpList}
	clientQuoteOps      = []Operation{
		OpRead, OpReview, OpAccept, OpRefuse, OpRequestModification, OpGenerateDocument,
	}
)

var actionOperations = map[enums.QuoteAction]Operation{
	enums.QuoteActionSend:                OpSend,
	enums.QuoteActionReview:              OpReview,
	enums.QuoteActionAccept:              OpAccept,
	enums.QuoteActionRefuse:              OpRefuse,
	enums.QuoteActionRequestModification: OpRequestModification,
	enums.QuoteActionRevise:              OpRevise,
}

// PermittedOperations resolves the caller's capabilities. A nil quote asks
// for collection-level operations (create, list).
func PermittedOperations(actor Actor, quote *models.Quote) OperationSet {
	switch actor.Role {
	case enums.ActorRoleAdmin:
		if quote == nil {
			return newOperationSet(adminCollectionOps...)
		}
		return newOperationSet(adminQuoteOps...)
	case enums.ActorRoleClient:
		if quote == nil {
			return newOperationSet(clientCollectionOps...)
		}
		if ownsQuote(actor, quote) {
			return newOperationSet(clientQuoteOps...)
		}
	}
	return newOperationSet()
}

func ownsQuote(actor Actor, quote *models.Quote) bool {
	return actor.ClientID != nil && *actor.ClientID != uuid.Nil && *actor.ClientID == quote.ClientID
}

func authenticate(actor Actor) error {
	if actor.Role == "" || actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "caller identity missing")
	}
	return nil
}

func authorize(actor Actor, quote *models.Quote, op Operation) error {
	if !PermittedOperations(actor, quote).Has(op) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "operation not permitted").
			WithDetails(map[string]string{"operation": string(op)})
	}
	return nil
}

// scopeFilters narrows a list request to what the caller may see.
func scopeFilters(actor Actor, params ListParams) (ListFilters, error) {
	if err := authorize(actor, nil, OpList); err != nil {
		return ListFilters{}, err
	}
	filters := ListFilters{Status: params.Status, ClientID: params.ClientID}
	if actor.Role == enums.ActorRoleClient {
		if actor.ClientID == nil || *actor.ClientID == uuid.Nil {
			return ListFilters{}, pkgerrors.New(pkgerrors.CodeForbidden, "client identity missing")
		}
		if params.ClientID != nil && *params.ClientID != *actor.ClientID {
			return ListFilters{}, pkgerrors.New(pkgerrors.CodeForbidden, "operation not permitted")
		}
		clientID := *actor.ClientID
		filters.ClientID = &clientID
	}
	return filters, nil
}

// AllowedActions lists the lifecycle actions the caller may apply to quote right now.
func AllowedActions(actor Actor, quote *models.Quote) []enums.QuoteAction {
	if quote == nil {
		return nil
	}
	ops := PermittedOperations(actor, quote)
	var out []enums.QuoteAction
	for _, action := range AvailableActions(quote.Status) {
		if ops.Has(actionOperations[action]) {
			out = append(out, action)
		}
	}
	return out
}
