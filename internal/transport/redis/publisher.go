package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-rounds/internal/entity"
)

// Publisher fans session events out over Redis Pub/Sub so that other
// processes can follow a session.
type Publisher struct {
	client *redis.Client
	prefix string
}

func NewPublisher(client *redis.Client, prefix string) *Publisher {
	return &Publisher{
		client: client,
		prefix: prefix,
	}
}

// Channel is the Pub/Sub channel carrying events of one session.
func (that *Publisher) Channel(sessionID string) string {
	return that.prefix + ":" + sessionID
}

func (that *Publisher) Publish(ctx context.Context, event entity.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err = that.client.Publish(ctx, that.Channel(event.Session.ID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	return nil
}

// Subscribe follows the events of one session. The caller closes the PubSub.
func (that *Publisher) Subscribe(ctx context.Context, sessionID string) (*redis.PubSub, error) {
	pubsub := that.client.Subscribe(ctx, that.Channel(sessionID))

	// wait for the subscription confirmation so no event published afterwards is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to session %s: %w", sessionID, err)
	}

	return pubsub, nil
}
