package store

import (
	"github.com/orris-inc/licensegate/internal/domain/shared/events"
)

// Outbound domain event names. Consumers such as dashboards subscribe by name.
const (
	EventStoreConnected    = "store.connected"
	EventStoreDisconnected = "store.disconnected"
	EventLicenseReserved   = "license.reserved"
	EventLicenseReleased   = "license.released"
	EventLimitReached      = "license.limit_reached"
	EventStoreOverLimit    = "store.over_limit"
	EventLicenseSynced     = "license.synced"
)

func newBase(eventType, token string) events.BaseEvent {
	return events.NewBaseEvent(eventType, token)
}

// ConnectedEvent is emitted when a store is created or reactivated.
type ConnectedEvent struct {
	events.BaseEvent
	Plan        Plan   `json:"plan"`
	Limit       *int   `json:"limit"`
	SiteURL     string `json:"site_url,omitempty"`
	Reactivated bool   `json:"reactivated"`
}

func NewConnectedEvent(s *Store, reactivated bool) ConnectedEvent {
	return ConnectedEvent{
		BaseEvent:   newBase(EventStoreConnected, s.Token()),
		Plan:        s.Plan(),
		Limit:       s.Limit(),
		SiteURL:     s.SiteURL(),
		Reactivated: reactivated,
	}
}

// DisconnectedEvent is emitted when a store is disconnected.
type DisconnectedEvent struct {
	events.BaseEvent
	Count int `json:"count"`
}

func NewDisconnectedEvent(s *Store) DisconnectedEvent {
	return DisconnectedEvent{
		BaseEvent: newBase(EventStoreDisconnected, s.Token()),
		Count:     s.Count(),
	}
}

// ReservedEvent is emitted after a slot was reserved.
type ReservedEvent struct {
	events.BaseEvent
	Count          int    `json:"count"`
	Limit          *int   `json:"limit"`
	LicenseKeyHash string `json:"license_key_hash,omitempty"`
	ProductID      string `json:"product_id,omitempty"`
}

func NewReservedEvent(s *Store, licenseKeyHash, productID string) ReservedEvent {
	return ReservedEvent{
		BaseEvent:      newBase(EventLicenseReserved, s.Token()),
		Count:          s.Count(),
		Limit:          s.Limit(),
		LicenseKeyHash: licenseKeyHash,
		ProductID:      productID,
	}
}

// ReleasedEvent is emitted after every release call, including no-op releases.
type ReleasedEvent struct {
	events.BaseEvent
	CountBefore    int    `json:"count_before"`
	CountAfter     int    `json:"count_after"`
	LicenseKeyHash string `json:"license_key_hash,omitempty"`
}

func NewReleasedEvent(s *Store, countBefore int, licenseKeyHash string) ReleasedEvent {
	return ReleasedEvent{
		BaseEvent:      newBase(EventLicenseReleased, s.Token()),
		CountBefore:    countBefore,
		CountAfter:     s.Count(),
		LicenseKeyHash: licenseKeyHash,
	}
}

// LimitReachedEvent is emitted when a reservation is refused at the limit.
type LimitReachedEvent struct {
	events.BaseEvent
	Plan     Plan   `json:"plan"`
	Count    int    `json:"count"`
	Limit    *int   `json:"limit"`
	SiteURL  string `json:"site_url,omitempty"`
	NextPlan Plan   `json:"next_plan,omitempty"`
}

func NewLimitReachedEvent(s *Store) LimitReachedEvent {
	next, _ := s.Plan().Next()
	return LimitReachedEvent{
		BaseEvent: newBase(EventLimitReached, s.Token()),
		Plan:      s.Plan(),
		Count:     s.Count(),
		Limit:     s.Limit(),
		SiteURL:   s.SiteURL(),
		NextPlan:  next,
	}
}

// OverLimitEvent is emitted when a plan change leaves count above the limit.
type OverLimitEvent struct {
	events.BaseEvent
	Plan     Plan   `json:"plan"`
	Count    int    `json:"count"`
	Limit    *int   `json:"limit"`
	Overage  int    `json:"overage"`
	SiteURL  string `json:"site_url,omitempty"`
	SiteName string `json:"site_name,omitempty"`
}

func NewOverLimitEvent(s *Store) OverLimitEvent {
	return OverLimitEvent{
		BaseEvent: newBase(EventStoreOverLimit, s.Token()),
		Plan:      s.Plan(),
		Count:     s.Count(),
		Limit:     s.Limit(),
		Overage:   s.OverLimitAmount(),
		SiteURL:   s.SiteURL(),
		SiteName:  s.SiteName(),
	}
}

// SyncedEvent carries both sides of a reconciliation call.
type SyncedEvent struct {
	events.BaseEvent
	ServerCount   int `json:"server_count"`
	ReportedCount int `json:"reported_count"`
	Difference    int `json:"difference"`
}

func NewSyncedEvent(token string, serverCount, reportedCount, difference int) SyncedEvent {
	return SyncedEvent{
		BaseEvent:     newBase(EventLicenseSynced, token),
		ServerCount:   serverCount,
		ReportedCount: reportedCount,
		Difference:    difference,
	}
}
