package relay

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/eventdesk-backend/pkg/enums"
	"github.com/angelmondragon/eventdesk-backend/pkg/outbox/registry"
	"github.com/angelmondragon/eventdesk-backend/pkg/pubsub"
)

type verdict int

const (
	delivered verdict = iota
	retryLater
	parked
)

func (v verdict) String() string {
	switch v {
	case delivered:
		return "delivered"
	case retryLater:
		return "retry"
	case parked:
		return "parked"
	}
	return "unknown"
}

// judge decides the fate of a row after its attempt-th publish attempt.
func judge(err error, attempt, maxAttempts int) (verdict, enums.OutboxDLQErrorReason) {
	switch {
	case err == nil:
		return delivered, ""
	case permanent(err):
		return parked, enums.OutboxDLQReasonNonRetryable
	case attempt >= maxAttempts:
		return parked, enums.OutboxDLQReasonMaxAttempts
	}
	return retryLater, ""
}

// permanent reports whether resending the same message cannot succeed.
func permanent(err error) bool {
	var nonRetry registry.NonRetryableError
	if errors.As(err, &nonRetry) || errors.Is(err, pubsub.ErrUnknownTopic) {
		return true
	}
	switch status.Code(err) {
	case codes.InvalidArgument, codes.NotFound, codes.PermissionDenied, codes.FailedPrecondition:
		return true
	}
	return false
}
