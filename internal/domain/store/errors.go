package store

import "errors"

var (
	// ErrStoreNotFound is returned when no store matches a token or license reference
	ErrStoreNotFound = errors.New("store not found")

	// ErrStoreDisconnected is returned when a disconnected store reserves a slot
	ErrStoreDisconnected = errors.New("store disconnected")

	// ErrLimitReached is returned when a reservation would exceed the plan limit
	ErrLimitReached = errors.New("license limit reached")

	// ErrInvalidToken is returned for an empty store token
	ErrInvalidToken = errors.New("invalid store token")

	// ErrInvalidLimit is returned for a non-positive limit
	ErrInvalidLimit = errors.New("limit must be positive when set")

	// ErrInvalidPlanTable is returned when plan configuration is unusable
	ErrInvalidPlanTable = errors.New("invalid plan table")

	// ErrDuplicateStore is returned when a token or license reference is already taken
	ErrDuplicateStore = errors.New("store already exists")

	// ErrVersionConflict is returned when an optimistic update lost a race
	ErrVersionConflict = errors.New("store was modified concurrently")
)
