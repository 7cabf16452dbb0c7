// Package events defines domain events and an in-process dispatcher.
package events

import (
	"time"
)

// SchemaVersion is bumped when an event payload changes incompatibly.
// Consumers of the Redis relay read it from the envelope.
const SchemaVersion = 1

// DomainEvent is a fact about one aggregate. For store events the aggregate
// ID is the store token.
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetOccurredAt() time.Time
	GetVersion() int
}

// BaseEvent is embedded by concrete events. Its fields are flattened into
// the event's JSON payload.
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	OccurredAt  time.Time `json:"occurred_at"`
	Version     int       `json:"version"`
}

// NewBaseEvent stamps an event of eventType for aggregateID at the current
// UTC time.
func NewBaseEvent(eventType, aggregateID string) BaseEvent {
	return BaseEvent{
		AggregateID: aggregateID,
		EventType:   eventType,
		OccurredAt:  time.Now().UTC(),
		Version:     SchemaVersion,
	}
}

func (e BaseEvent) GetAggregateID() string   { return e.AggregateID }
func (e BaseEvent) GetEventType() string     { return e.EventType }
func (e BaseEvent) GetOccurredAt() time.Time { return e.OccurredAt }
func (e BaseEvent) GetVersion() int          { return e.Version }

// EventHandler receives dispatched events it reports it can handle.
type EventHandler interface {
	Handle(event DomainEvent) error
	CanHandle(eventType string) bool
}

// EventPublisher is what application services publish through. Publishing
// must not block the calling request.
type EventPublisher interface {
	Publish(event DomainEvent) error
}
