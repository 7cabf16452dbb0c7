package usecases

import (
	"context"
	"time"

	"github.com/orris-inc/licensegate/internal/application/entitlement/dto"
	"github.com/orris-inc/licensegate/internal/domain/audit"
	"github.com/orris-inc/licensegate/internal/domain/shared/events"
	"github.com/orris-inc/licensegate/internal/shared/logger"
)

// AuditRecorder appends audit events. Implementations never fail the caller;
// write failures are tracked for health reporting.
type AuditRecorder interface {
	Record(ctx context.Context, storeToken string, eventType audit.EventType, details audit.Details)
}

// AuditHealthReporter exposes the audit writer's failure state.
type AuditHealthReporter interface {
	Health() dto.AuditHealth
}

// RateLimiter admits or rejects a request for a store token.
type RateLimiter interface {
	Check(ctx context.Context, storeToken string) error
}

// Probe reports whether a dependency answers.
type Probe func(ctx context.Context) error

// Clock returns the current time.
type Clock func() time.Time

// publish hands an outbound event to the dispatcher. Listeners are optional,
// so a failed publish is logged and otherwise ignored.
func publish(publisher events.EventPublisher, log logger.Interface, event events.DomainEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(event); err != nil {
		log.Warnw("failed to publish domain event",
			"event_type", event.GetEventType(),
			"error", err,
		)
	}
}
