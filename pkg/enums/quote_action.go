package enums

import "fmt"

// QuoteAction names a lifecycle transition trigger.
type QuoteAction string

const (
	QuoteActionSend                QuoteAction = "send"
	QuoteActionReview              QuoteAction = "review"
	QuoteActionAccept              QuoteAction = "accept"
	QuoteActionRefuse              QuoteAction = "refuse"
	QuoteActionRequestModification QuoteAction = "request_modification"
	QuoteActionRevise              QuoteAction = "revise"
)

var validQuoteActions = []QuoteAction{
	QuoteActionSend,
	QuoteActionReview,
	QuoteActionAccept,
	QuoteActionRefuse,
	QuoteActionRequestModification,
	QuoteActionRevise,
}

// QuoteActions returns every known action.
func QuoteActions() []QuoteAction {
	out := make([]QuoteAction, len(validQuoteActions))
	copy(out, validQuoteActions)
	return out
}

// String implements fmt.Stringer.
func (a QuoteAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known QuoteAction.
func (a QuoteAction) IsValid() bool {
	for _, candidate := range validQuoteActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseQuoteAction converts raw input into a QuoteAction.
func ParseQuoteAction(value string) (QuoteAction, error) {
	for _, candidate := range validQuoteActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote action %q", value)
}
