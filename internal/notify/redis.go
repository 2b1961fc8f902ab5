package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"veriport/internal/platform/redis"
)

// RedisNotifier publishes verdicts over Redis pub/sub so any websocket node
// holding the user's connection can pick them up.
type RedisNotifier struct {
	client *redis.Client
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func (n *RedisNotifier) Publish(ctx context.Context, userID string, payload any) error {
	message, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := n.client.Publish(ctx, Channel(userID), message).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

var _ Notifier = (*RedisNotifier)(nil)
