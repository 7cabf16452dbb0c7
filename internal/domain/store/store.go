package store

import (
	"fmt"
	"time"
)

// Store is the quota ledger aggregate root. The count is only ever changed by
// the repository's atomic reserve and release operations; the aggregate
// carries it for reads and over-limit evaluation.
type Store struct {
	id              uint
	token           string
	secretMaterial  string
	licenseRef      string
	plan            Plan
	limit           *int
	count           int
	connected       bool
	overLimit       bool
	overLimitAmount int
	siteURL         string
	siteName        string
	connectedAt     *time.Time
	lastSeenAt      *time.Time
	createdAt       time.Time
	updatedAt       time.Time
	version         int

	// persistedVersion is the version the row held when the store was loaded
	// or last saved. Update matches on it.
	persistedVersion int
}

// NewStore creates a connected store with a zero count.
func NewStore(token, secretMaterial, licenseRef string, plan Plan, limit *int, siteURL, siteName string) (*Store, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	if secretMaterial == "" {
		return nil, fmt.Errorf("secret material is required")
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	s := &Store{
		token:          token,
		secretMaterial: secretMaterial,
		licenseRef:     licenseRef,
		plan:           plan,
		limit:          limit,
		connected:      true,
		siteURL:        siteURL,
		siteName:       siteName,
		connectedAt:    &now,
		createdAt:      now,
		updatedAt:      now,
		version:        1,
	}
	s.persistedVersion = s.version
	return s, nil
}

// ReconstructStore reconstructs a store from persistence
func ReconstructStore(
	id uint,
	token, secretMaterial, licenseRef string,
	plan Plan,
	limit *int,
	count int,
	connected, overLimit bool,
	overLimitAmount int,
	siteURL, siteName string,
	connectedAt, lastSeenAt *time.Time,
	createdAt, updatedAt time.Time,
	version int,
) (*Store, error) {
	if id == 0 {
		return nil, fmt.Errorf("store ID cannot be zero")
	}
	if token == "" {
		return nil, ErrInvalidToken
	}
	if count < 0 {
		return nil, fmt.Errorf("store %d has negative count %d", id, count)
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	s := &Store{
		id:              id,
		token:           token,
		secretMaterial:  secretMaterial,
		licenseRef:      licenseRef,
		plan:            plan,
		limit:           limit,
		count:           count,
		connected:       connected,
		overLimit:       overLimit,
		overLimitAmount: overLimitAmount,
		siteURL:         siteURL,
		siteName:        siteName,
		connectedAt:     connectedAt,
		lastSeenAt:      lastSeenAt,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
		version:         version,
	}
	s.persistedVersion = version
	return s, nil
}

func validateLimit(limit *int) error {
	if limit != nil && *limit <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidLimit, *limit)
	}
	return nil
}

func (s *Store) ID() uint { return s.id }
func (s *Store) Token() string { return s.token }
func (s *Store) LicenseRef() string { return s.licenseRef }
func (s *Store) Plan() Plan { return s.plan }
func (s *Store) Count() int { return s.count }
func (s *Store) IsConnected() bool { return s.connected }
func (s *Store) IsOverLimit() bool { return s.overLimit }
func (s *Store) OverLimitAmount() int { return s.overLimitAmount }
func (s *Store) SiteURL() string { return s.siteURL }
func (s *Store) SiteName() string { return s.siteName }
func (s *Store) ConnectedAt() *time.Time { return s.connectedAt }
func (s *Store) LastSeenAt() *time.Time { return s.lastSeenAt }
func (s *Store) CreatedAt() time.Time { return s.createdAt }
func (s *Store) UpdatedAt() time.Time { return s.updatedAt }
func (s *Store) Version() int { return s.version }
func (s *Store) PersistedVersion() int { return s.persistedVersion }
func (s *Store) IsUnlimited() bool { return s.limit == nil }

// SecretMaterial returns the signing material used to verify request
// signatures. It must never be echoed back to a caller after issuance.
func (s *Store) SecretMaterial() string {
	return s.secretMaterial
}

// Limit returns a copy of the license limit, nil when unlimited.
func (s *Store) Limit() *int {
	if s.limit == nil {
		return nil
	}
	l := *s.limit
	return &l
}

// SetID sets the store ID (only for persistence layer use)
func (s *Store) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("store ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("store ID cannot be zero")
	}
	s.id = id
	return nil
}

// Entitlement computes the store's current allowance.
func (s *Store) Entitlement() Entitlement {
	return ComputeEntitlement(s.plan, s.Limit(), s.count)
}

// DenialReason returns why a reservation would be refused right now, or
// false when one slot is still available.
func (s *Store) DenialReason() (DenialReason, bool) {
	if !s.connected {
		return DenialStoreDisconnected, true
	}
	if s.Entitlement().AtLimit() {
		return DenialLimitReached, true
	}
	return "", false
}

// Reactivate reconnects the store and refreshes its plan and site details.
// Reactivation clears any over-limit flag.
func (s *Store) Reactivate(plan Plan, limit *int, siteURL, siteName string) error {
	if err := validateLimit(limit); err != nil {
		return err
	}

	now := time.Now().UTC()
	s.connected = true
	s.connectedAt = &now
	s.plan = plan
	s.limit = limit
	if siteURL != "" {
		s.siteURL = siteURL
	}
	if siteName != "" {
		s.siteName = siteName
	}
	s.overLimit = false
	s.overLimitAmount = 0
	s.touch(now)
	return nil
}

// Disconnect marks the store as disconnected. It reports false when the store
// was already disconnected.
func (s *Store) Disconnect() bool {
	if !s.connected {
		return false
	}
	s.connected = false
	s.touch(time.Now().UTC())
	return true
}

// LinkLicense records the external license reference once it becomes known.
func (s *Store) LinkLicense(ref string) {
	if ref == "" || s.licenseRef == ref {
		return
	}
	s.licenseRef = ref
	s.touch(time.Now().UTC())
}

// touch records an unsaved change. Several changes before one save bump the
// version once.
func (s *Store) touch(now time.Time) {
	s.updatedAt = now
	if s.version == s.persistedVersion {
		s.version++
	}
}

// MarkPersisted is called by the repository after a successful save.
func (s *Store) MarkPersisted() {
	s.persistedVersion = s.version
}

// OverLimitBy returns by how many licenses count exceeds limit, or 0.
func OverLimitBy(limit *int, count int) int {
	if limit == nil || count <= *limit {
		return 0
	}
	return count - *limit
}
