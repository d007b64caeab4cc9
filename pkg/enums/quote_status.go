package enums

import "fmt"

// QuoteStatus tracks where a quote sits in its lifecycle.
type QuoteStatus string

const (
	QuoteStatusDraft                 QuoteStatus = "draft"
	QuoteStatusSent                  QuoteStatus = "sent"
	QuoteStatusUnderReview           QuoteStatus = "under_review"
	QuoteStatusModificationRequested QuoteStatus = "modification_requested"
	QuoteStatusAccepted              QuoteStatus = "accepted"
	QuoteStatusRefused               QuoteStatus = "refused"
)

var validQuoteStatuses = []QuoteStatus{
	QuoteStatusDraft,
	QuoteStatusSent,
	QuoteStatusUnderReview,
	QuoteStatusModificationRequested,
	QuoteStatusAccepted,
	QuoteStatusRefused,
}

// QuoteStatuses returns every known status in lifecycle order.
func QuoteStatuses() []QuoteStatus {
	out := make([]QuoteStatus, len(validQuoteStatuses))
	copy(out, validQuoteStatuses)
	return out
}

// String implements fmt.Stringer.
func (s QuoteStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known QuoteStatus.
func (s QuoteStatus) IsValid() bool {
	for _, candidate := range validQuoteStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition may leave this status.
func (s QuoteStatus) IsTerminal() bool {
	return s == QuoteStatusAccepted || s == QuoteStatusRefused
}

// ParseQuoteStatus converts raw input into a QuoteStatus.
func ParseQuoteStatus(value string) (QuoteStatus, error) {
	for _, candidate := range validQuoteStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote status %q", value)
}
