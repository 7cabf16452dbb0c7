// Package audit models the append-only trail of ledger-affecting actions.
package audit

import (
	"fmt"
	"time"

	"github.com/orris-inc/licensegate/internal/domain/store"
)

// EventType enumerates the ledger actions that are recorded.
type EventType string

const (
	EventReserved      EventType = "reserved"
	EventReleased      EventType = "released"
	EventReserveDenied EventType = "reserve_denied"
	EventSync          EventType = "sync"
)

// IsValid checks if the event type is valid
func (t EventType) IsValid() bool {
	switch t {
	case EventReserved, EventReleased, EventReserveDenied, EventSync:
		return true
	default:
		return false
	}
}

// String returns the string representation of the event type
func (t EventType) String() string {
	return string(t)
}

// Event is one immutable audit record. For sync events CountBefore holds the
// server count and CountAfter the client-reported count.
type Event struct {
	id             uint
	storeToken     string
	eventType      EventType
	countBefore    int
	countAfter     int
	allowed        bool
	denialReason   store.DenialReason
	licenseKeyHash string
	productID      string
	sourceAddress  string
	metadata       map[string]any
	createdAt      time.Time
}

// Details are the optional attributes of a recorded event.
type Details struct {
	CountBefore    int
	CountAfter     int
	Allowed        bool
	DenialReason   store.DenialReason
	LicenseKeyHash string
	ProductID      string
	SourceAddress  string
	Metadata       map[string]any
}

// NewEvent validates and builds an audit event. A denial reason is required
// exactly when the action was not allowed.
func NewEvent(storeToken string, eventType EventType, d Details) (*Event, error) {
	if storeToken == "" {
		return nil, ErrStoreTokenRequired
	}
	if !eventType.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEventType, eventType)
	}
	if d.Allowed && d.DenialReason != "" {
		return nil, fmt.Errorf("%w: allowed event carries reason %s", ErrInvalidDenialReason, d.DenialReason)
	}
	if !d.Allowed && !d.DenialReason.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDenialReason, d.DenialReason)
	}

	metadata := d.Metadata
	if metadata == nil {
		metadata = make(map[string]any)
	}

	return &Event{
		storeToken:     storeToken,
		eventType:      eventType,
		countBefore:    d.CountBefore,
		countAfter:     d.CountAfter,
		allowed:        d.Allowed,
		denialReason:   d.DenialReason,
		licenseKeyHash: d.LicenseKeyHash,
		productID:      d.ProductID,
		sourceAddress:  d.SourceAddress,
		metadata:       metadata,
		createdAt:      time.Now().UTC(),
	}, nil
}

// ReconstructEvent reconstructs an event from persistence
func ReconstructEvent(id uint, storeToken string, eventType EventType, d Details, createdAt time.Time) *Event {
	return &Event{
		id:             id,
		storeToken:     storeToken,
		eventType:      eventType,
		countBefore:    d.CountBefore,
		countAfter:     d.CountAfter,
		allowed:        d.Allowed,
		denialReason:   d.DenialReason,
		licenseKeyHash: d.LicenseKeyHash,
		productID:      d.ProductID,
		sourceAddress:  d.SourceAddress,
		metadata:       d.Metadata,
		createdAt:      createdAt,
	}
}

func (e *Event) ID() uint { return e.id }
func (e *Event) StoreToken() string { return e.storeToken }
func (e *Event) Type() EventType { return e.eventType }
func (e *Event) CountBefore() int { return e.countBefore }
func (e *Event) CountAfter() int { return e.countAfter }
func (e *Event) Allowed() bool { return e.allowed }
func (e *Event) DenialReason() store.DenialReason { return e.denialReason }
func (e *Event) LicenseKeyHash() string { return e.licenseKeyHash }
func (e *Event) ProductID() string { return e.productID }
func (e *Event) SourceAddress() string { return e.sourceAddress }
func (e *Event) Metadata() map[string]any { return e.metadata }
func (e *Event) CreatedAt() time.Time { return e.createdAt }

// SetID sets the event ID (only for persistence layer use)
func (e *Event) SetID(id uint) {
	e.id = id
}
