package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/licensegate/internal/domain/shared/events"
	"github.com/orris-inc/licensegate/internal/shared/logger"
)

const publishTimeout = 3 * time.Second

// StoreEventEnvelope is the wire shape of an outbound domain event.
type StoreEventEnvelope struct {
	EventType  string          `json:"event_type"`
	StoreToken string          `json:"store_token"`
	OccurredAt int64           `json:"occurred_at"`
	Version    int             `json:"version"`
	Payload    json.RawMessage `json:"payload"`
}

// RedisStoreEventPublisher relays domain events to a Redis channel for
// dashboards and other instances. It subscribes to the in-process dispatcher
// as a wildcard handler.
type RedisStoreEventPublisher struct {
	client  *redis.Client
	channel string
	logger  logger.Interface
}

// NewRedisStoreEventPublisher creates a publisher for channel.
func NewRedisStoreEventPublisher(client *redis.Client, channel string, logger logger.Interface) *RedisStoreEventPublisher {
	return &RedisStoreEventPublisher{
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

// CanHandle accepts every event type.
func (p *RedisStoreEventPublisher) CanHandle(string) bool {
	return true
}

// Handle publishes one event. Dispatcher handlers carry no context, so each
// publish gets its own deadline.
func (p *RedisStoreEventPublisher) Handle(event events.DomainEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	return p.Publish(ctx, event)
}

// Publish encodes event into an envelope and publishes it.
func (p *RedisStoreEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.GetEventType(), err)
	}

	data, err := json.Marshal(StoreEventEnvelope{
		EventType:  event.GetEventType(),
		StoreToken: event.GetAggregateID(),
		OccurredAt: event.GetOccurredAt().Unix(),
		Version:    event.GetVersion(),
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		p.logger.Errorw("failed to publish store event",
			"event_type", event.GetEventType(),
			"channel", p.channel,
			"error", err,
		)
		return fmt.Errorf("failed to publish store event: %w", err)
	}

	p.logger.Debugw("store event published to Redis",
		"event_type", event.GetEventType(),
		"channel", p.channel,
	)
	return nil
}
