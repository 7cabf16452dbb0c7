package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// alertKeyPrefix is the prefix for all alert deduplication keys
const alertKeyPrefix = "licensegate:alert:"

// AlertDeduplicator provides Redis-based alert deduplication shared by every
// instance of the service.
type AlertDeduplicator struct {
	client *redis.Client
}

// NewAlertDeduplicator creates a new AlertDeduplicator instance
func NewAlertDeduplicator(client *redis.Client) *AlertDeduplicator {
	return &AlertDeduplicator{client: client}
}

// buildKey builds the Redis key for alert deduplication
// Format: licensegate:alert:{event_type}:{store_token}
func (d *AlertDeduplicator) buildKey(eventType, storeToken string) string {
	return fmt.Sprintf("%s%s:%s", alertKeyPrefix, eventType, storeToken)
}

// TryAcquire atomically checks and acquires an alert lock using SetNX.
// Returns true if the alert should be sent, false if still in cooldown.
func (d *AlertDeduplicator) TryAcquire(ctx context.Context, eventType, storeToken string, ttl time.Duration) (bool, error) {
	acquired, err := d.client.SetNX(ctx, d.buildKey(eventType, storeToken), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire alert lock: %w", err)
	}
	return acquired, nil
}

// Clear drops the cooldown so the next alert is sent immediately. Used when
// sending the alert failed.
func (d *AlertDeduplicator) Clear(ctx context.Context, eventType, storeToken string) error {
	if err := d.client.Del(ctx, d.buildKey(eventType, storeToken)).Err(); err != nil {
		return fmt.Errorf("failed to clear alert: %w", err)
	}
	return nil
}

// RemainingCooldown returns the remaining cooldown time for an alert.
// Returns 0 if not in cooldown.
func (d *AlertDeduplicator) RemainingCooldown(ctx context.Context, eventType, storeToken string) (time.Duration, error) {
	ttl, err := d.client.TTL(ctx, d.buildKey(eventType, storeToken)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get cooldown: %w", err)
	}

	// TTL returns -2 if key doesn't exist, -1 if no TTL set
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}
