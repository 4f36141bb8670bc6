package suggestion

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub/v2"
)

// MessageKind is the "kind" attribute of published suggestions.
const MessageKind = "suggestion"

// Notifier is told about every stored suggestion.
type Notifier interface {
	Notify(ctx context.Context, s Suggestion) error
}

// NopNotifier discards notifications.
type NopNotifier struct{}

// Notify does nothing.
func (NopNotifier) Notify(context.Context, Suggestion) error { return nil }

// PubSubNotifier publishes suggestions to a Pub/Sub topic.
type PubSubNotifier struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topic     string
}

// PubSubNotifierConfig holds configuration for the Pub/Sub notifier.
type PubSubNotifierConfig struct {
	ProjectID string
	Topic     string
}

// NewPubSubNotifier creates a Pub/Sub client and a publisher for cfg.Topic.
func NewPubSubNotifier(ctx context.Context, cfg PubSubNotifierConfig) (*PubSubNotifier, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &PubSubNotifier{
		client:    client,
		publisher: client.Publisher(cfg.Topic),
		topic:     cfg.Topic,
	}, nil
}

// Notify publishes s as JSON and waits for the server ack.
func (n *PubSubNotifier) Notify(ctx context.Context, s Suggestion) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding suggestion: %w", err)
	}

	result := n.publisher.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"kind": MessageKind, "type": s.Type},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publishing to %s: %w", n.topic, err)
	}
	return nil
}

// Close flushes pending messages and closes the client.
func (n *PubSubNotifier) Close() error {
	n.publisher.Stop()
	return n.client.Close()
}
