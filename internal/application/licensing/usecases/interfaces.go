package usecases

import (
	"context"
	"errors"

	"github.com/orris-inc/licensegate/internal/domain/shared/events"
	"github.com/orris-inc/licensegate/internal/domain/store"
	"github.com/orris-inc/licensegate/internal/shared/logger"
)

// maxUpdateAttempts bounds retries of optimistic updates that lost a race.
const maxUpdateAttempts = 3

// retryOnConflict reruns fn while it reports a version conflict. fn must
// re-read the store on every attempt.
func retryOnConflict(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		if err = fn(ctx); !errors.Is(err, store.ErrVersionConflict) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}

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
