package messaging

import (
	"context"
)

// --- Message Bus Client Abstraction Interfaces ---

// Topic defines the narrow view of a message-bus topic the gateway needs:
// existence verification and a single blocking publish.
type Topic interface {
	ID() string
	Exists(ctx context.Context) (bool, error)
	// Publish sends one message and blocks until the bus confirms it,
	// returning the bus-assigned message identifier.
	Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error)
}

// Client defines the generic interface for a message-bus client.
type Client interface {
	Topic(id string) Topic
	Close() error
}
