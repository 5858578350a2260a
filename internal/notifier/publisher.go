package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	notificationQueueKey = "notifications"
)

// Notification is one outbound chat message. RequestLocation attaches
// a location-sharing keyboard to the message.
type Notification struct {
	ChatID          int64  `json:"chat_id"`
	Text            string `json:"text"`
	RequestLocation bool   `json:"request_location,omitempty"`
}

// Publisher enqueues notifications for asynchronous delivery, so
// request handlers never block on the chat platform.
type Publisher interface {
	Publish(ctx context.Context, n Notification) error
}

// RedisPublisher is a Publisher backed by a Redis list.
type RedisPublisher struct {
	redisClient *redis.Client
}

// NewRedisPublisher creates a new RedisPublisher.
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{
		redisClient: client,
	}
}

// Publish pushes the notification onto the left side of the queue list.
func (p *RedisPublisher) Publish(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := p.redisClient.LPush(ctx, notificationQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification to Redis: %w", err)
	}
	return nil
}
