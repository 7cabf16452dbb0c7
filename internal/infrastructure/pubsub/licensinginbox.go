package pubsub

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/licensegate/internal/shared/goroutine"
	"github.com/orris-inc/licensegate/internal/shared/logger"
)

// InboxHandler processes one raw licensing notification payload.
type InboxHandler func(ctx context.Context, payload []byte) error

// LicensingInbox consumes licensing notifications pushed by the subscription
// system on a Redis channel.
type LicensingInbox struct {
	client     *redis.Client
	channel    string
	logger     logger.Interface
	maxBackoff time.Duration
}

// NewLicensingInbox creates a subscriber for channel.
func NewLicensingInbox(client *redis.Client, channel string, logger logger.Interface) *LicensingInbox {
	return &LicensingInbox{
		client:     client,
		channel:    channel,
		logger:     logger,
		maxBackoff: 30 * time.Second,
	}
}

// Run subscribes and dispatches messages until ctx is cancelled, reconnecting
// with exponential backoff when the subscription drops.
func (s *LicensingInbox) Run(ctx context.Context, handler InboxHandler) error {
	backoff := time.Second

	for {
		err := s.subscribe(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		s.logger.Warnw("licensing inbox disconnected, reconnecting",
			"channel", s.channel,
			"error", err,
			"backoff", backoff,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = min(backoff*2, s.maxBackoff)
	}
}

// subscribe handles messages in arrival order. Notifications for one license
// must apply in sequence, so there is no per-message goroutine.
func (s *LicensingInbox) subscribe(ctx context.Context, handler InboxHandler) error {
	sub := s.client.Subscribe(ctx, s.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to channel %s: %w", s.channel, err)
	}

	s.logger.Infow("subscribed to licensing inbox", "channel", s.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("licensing inbox stopped",
				"channel", s.channel,
				"reason", ctx.Err(),
			)
			return ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("channel %s closed", s.channel)
			}

			goroutine.Recover(s.logger, "licensing-inbox", func() {
				if err := handler(ctx, []byte(msg.Payload)); err != nil {
					s.logger.Warnw("licensing notification rejected",
						"channel", s.channel,
						"error", err,
					)
				}
			})
		}
	}
}
