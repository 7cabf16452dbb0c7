package audit

import "errors"

var (
	// ErrStoreTokenRequired is returned when an event has no store reference
	ErrStoreTokenRequired = errors.New("store token is required")

	// ErrInvalidEventType is returned for an unknown event type
	ErrInvalidEventType = errors.New("invalid audit event type")

	// ErrInvalidDenialReason is returned when allowed and denial reason disagree
	ErrInvalidDenialReason = errors.New("invalid denial reason")
)
