package store

import (
	"context"
	"time"
)

// Stats are ledger-wide gauges reported by health.
type Stats struct {
	TotalStores     int64
	ConnectedStores int64
	StoresAtLimit   int64
}

// Repository defines the persistence contract of the quota ledger.
// Reserve, Release and ApplyPlan must each be a single atomic step per store
// token so that concurrent calls on one store serialize at the storage layer.
type Repository interface {
	// Create persists a new store. Returns ErrDuplicateStore on token or
	// license reference collision.
	Create(ctx context.Context, s *Store) error

	// Update saves non-count fields using optimistic locking on version.
	Update(ctx context.Context, s *Store) error

	// GetByToken returns ErrStoreNotFound when no store matches.
	GetByToken(ctx context.Context, token string) (*Store, error)

	// GetByLicenseRef looks a store up by its external license reference.
	GetByLicenseRef(ctx context.Context, licenseRef string) (*Store, error)

	// Reserve increments count by one if the store is connected and under its
	// limit, and returns the updated store. On ErrStoreDisconnected or
	// ErrLimitReached the returned store is the unchanged snapshot.
	Reserve(ctx context.Context, token string, at time.Time) (*Store, error)

	// Release decrements count by one, floored at zero, and clears the
	// over-limit flag. released is false when count was already zero.
	Release(ctx context.Context, token string, at time.Time) (s *Store, released bool, err error)

	// ApplyPlan sets plan and limit and re-evaluates the over-limit flag
	// against the count at the moment of the update.
	ApplyPlan(ctx context.Context, token string, plan Plan, limit *int) (*Store, error)

	// Touch updates last_seen_at only.
	Touch(ctx context.Context, token string, at time.Time) error

	// Stats returns ledger-wide gauges.
	Stats(ctx context.Context) (*Stats, error)
}
