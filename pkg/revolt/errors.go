package revolt

import "errors"

var (
	// ErrInvalidEvent indicates that an event does not satisfy dispatch invariants.
	ErrInvalidEvent = errors.New("revolt: invalid event")
	// ErrInvalidPayload indicates that a wire payload is missing required fields.
	ErrInvalidPayload = errors.New("revolt: invalid payload")
	// ErrUnknownChannelType indicates an unrecognized channel discriminant.
	//
	// This is protocol drift: the client cannot safely guess a variant, so the
	// construction is aborted rather than logged and skipped.
	ErrUnknownChannelType = errors.New("revolt: unknown channel type")
	// ErrNotAuthenticated indicates a request was issued without a token.
	ErrNotAuthenticated = errors.New("revolt: not authenticated")
	// ErrInvalidSubscription indicates that a subscription configuration is invalid.
	ErrInvalidSubscription = errors.New("revolt: invalid subscription")
	// ErrSubscriptionClosed indicates that a subscription is no longer active.
	ErrSubscriptionClosed = errors.New("revolt: subscription closed")
	// ErrEventDropped indicates a non-blocking backpressure drop.
	ErrEventDropped = errors.New("revolt: event dropped due to backpressure")
)
