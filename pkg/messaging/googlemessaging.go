package messaging

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// --- Adapter Implementations ---

type gcpTopicAdapter struct{ topic *pubsub.Topic }

func (a *gcpTopicAdapter) ID() string                               { return a.topic.ID() }
func (a *gcpTopicAdapter) Exists(ctx context.Context) (bool, error) { return a.topic.Exists(ctx) }

func (a *gcpTopicAdapter) Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error) {
	result := a.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attributes,
	})
	return result.Get(ctx)
}

type gcpClientAdapter struct{ client *pubsub.Client }

func (a *gcpClientAdapter) Topic(id string) Topic {
	topic := a.client.Topic(id)
	// Single-message requests gain nothing from the SDK's batching window.
	topic.PublishSettings.CountThreshold = 1
	return &gcpTopicAdapter{topic: topic}
}

func (a *gcpClientAdapter) Close() error { return a.client.Close() }

// NewGoogleClientAdapter wraps a concrete *pubsub.Client to satisfy the Client interface.
func NewGoogleClientAdapter(client *pubsub.Client) Client {
	if client == nil {
		return nil
	}
	return &gcpClientAdapter{client: client}
}

// CreateGoogleClient creates a real Pub/Sub client for use in production.
func CreateGoogleClient(ctx context.Context, projectID string, clientOpts ...option.ClientOption) (Client, error) {
	realClient, err := pubsub.NewClient(ctx, projectID, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("pubsub.NewClient: %w", err)
	}
	return NewGoogleClientAdapter(realClient), nil
}
