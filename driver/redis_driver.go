package driver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"permanode/domain"
)

// RedisDriver implements port.StreamPort using Redis Streams.
type RedisDriver struct {
	client *redis.Client
	maxLen int64
}

// NewRedisDriverWithURL creates a new Redis driver from a URL. Streams are
// trimmed to roughly maxLen entries when maxLen is positive.
func NewRedisDriverWithURL(url string, maxLen int64) (*RedisDriver, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisDriver{client: redis.NewClient(opts), maxLen: maxLen}, nil
}

// NewRedisDriverWithClient wraps an existing client.
func NewRedisDriverWithClient(client *redis.Client, maxLen int64) *RedisDriver {
	return &RedisDriver{client: client, maxLen: maxLen}
}

// Close closes the Redis connection.
func (d *RedisDriver) Close() error {
	return d.client.Close()
}

// Publish publishes an event to a stream and returns the message ID.
func (d *RedisDriver) Publish(ctx context.Context, stream domain.StreamKey, event *domain.Event) (string, error) {
	if event == nil {
		return "", errors.New("event is nil")
	}

	args := &redis.XAddArgs{
		Stream: stream.String(),
		Values: d.eventToValues(event),
	}
	if d.maxLen > 0 {
		args.MaxLen = d.maxLen
		args.Approx = true
	}

	return d.client.XAdd(ctx, args).Result()
}

// Ping checks if Redis is available.
func (d *RedisDriver) Ping(ctx context.Context) error {
	return d.client.Ping(ctx).Err()
}

// eventToValues converts an Event to a map for XADD.
func (d *RedisDriver) eventToValues(event *domain.Event) map[string]interface{} {
	values := map[string]interface{}{
		"event_id":   event.EventID,
		"event_type": string(event.EventType),
		"source":     event.Source,
		"created_at": event.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
	}

	if len(event.Payload) > 0 {
		values["payload"] = string(event.Payload)
	}

	if len(event.Metadata) > 0 {
		metadataJSON, _ := json.Marshal(event.Metadata)
		values["metadata"] = string(metadataJSON)
	}

	return values
}
