package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/illmade-knight/go-pubsub-gateway/pkg/messaging"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// originAttribute marks every relayed message with the system that forwarded it.
const originAttribute = "pubsub-gateway"

// PublishRequest is the inbound REST body. Message, Credentials and Scope are
// kept raw so their shape can be dispatched on after decoding.
type PublishRequest struct {
	Topic       string          `json:"topic"`
	Message     json.RawMessage `json:"message"`
	Credentials json.RawMessage `json:"credentials,omitempty"`
	ProjectID   string          `json:"projectId,omitempty"`
	Scope       json.RawMessage `json:"scope,omitempty"`
}

// PublishOutcome reports a publish confirmed by the bus.
type PublishOutcome struct {
	MessageID string
	Timestamp time.Time
}

// ClientFactory opens a bus client for the given project with the supplied
// client options. The relay uses it for requests that carry their own
// credentials; each such client lives for exactly one request.
type ClientFactory func(ctx context.Context, projectID string, opts ...option.ClientOption) (messaging.Client, error)

// Relay validates publish requests, resolves an authentication context and
// forwards the payload to the message bus. It holds no per-request state.
type Relay struct {
	projectID     string
	defaultClient messaging.Client
	newClient     ClientFactory
	logger        zerolog.Logger
}

// NewRelay creates a Relay. The default client serves requests on the ambient
// identity; the factory serves requests with caller-supplied credentials.
func NewRelay(defaultProjectID string, defaultClient messaging.Client, factory ClientFactory, logger zerolog.Logger) (*Relay, error) {
	if defaultClient == nil {
		return nil, fmt.Errorf("bus client cannot be nil for relay")
	}
	if factory == nil {
		return nil, fmt.Errorf("bus client factory cannot be nil for relay")
	}
	return &Relay{
		projectID:     defaultProjectID,
		defaultClient: defaultClient,
		newClient:     factory,
		logger:        logger.With().Str("component", "Relay").Logger(),
	}, nil
}

// Publish carries out the relay contract: validate, resolve credentials,
// verify the topic exists, publish once. Validation failures never reach the
// bus, and nothing is retried.
func (r *Relay) Publish(ctx context.Context, req *PublishRequest) (*PublishOutcome, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, newRelayError(ErrMissingTopic, "Topic name is required", nil)
	}
	if isAbsent(req.Message) {
		return nil, newRelayError(ErrMissingMessage, "Message is required", nil)
	}

	projectID := req.ProjectID
	if projectID == "" {
		projectID = r.projectID
	}

	scopes, err := parseScopes(req.Scope)
	if err != nil {
		return nil, err
	}
	auth, err := ResolveCredentials(req.Credentials, scopes)
	if err != nil {
		return nil, err
	}

	// Credential contents are never logged, only the resolved kind.
	logger := r.logger.With().
		Str("topic", req.Topic).
		Str("project_id", projectID).
		Str("credential_kind", auth.Kind.String()).
		Logger()

	client := r.defaultClient
	if auth.Kind != CredentialDefault {
		perRequestClient, factoryErr := r.newClient(ctx, projectID, auth.ClientOptions()...)
		if factoryErr != nil {
			logger.Error().Err(factoryErr).Msg("Failed to create bus client for request credentials")
			return nil, classifyBusError(factoryErr, scopes)
		}
		defer func() {
			if closeErr := perRequestClient.Close(); closeErr != nil {
				logger.Warn().Err(closeErr).Msg("Failed to close per-request bus client")
			}
		}()
		client = perRequestClient
	}

	topic := client.Topic(req.Topic)
	exists, err := topic.Exists(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Topic existence check failed")
		return nil, classifyBusError(err, scopes)
	}
	if !exists {
		return nil, newRelayError(ErrTopicNotFound, fmt.Sprintf("Topic '%s' does not exist", req.Topic), nil)
	}

	payload, err := compactJSON(req.Message)
	if err != nil {
		return nil, newRelayError(ErrBadRequest, "Message is not valid JSON", err)
	}

	attributes := map[string]string{
		"origin":       originAttribute,
		"published_at": time.Now().UTC().Format(time.RFC3339Nano),
		"request_id":   uuid.NewString(),
	}

	messageID, err := topic.Publish(ctx, payload, attributes)
	if err != nil {
		logger.Error().Err(err).Msg("Publish to bus failed")
		return nil, classifyBusError(err, scopes)
	}

	logger.Debug().Str("message_id", messageID).Msg("Message published successfully")
	return &PublishOutcome{
		MessageID: messageID,
		Timestamp: time.Now().UTC(),
	}, nil
}

// isAbsent treats a missing field and an explicit JSON null the same way.
func isAbsent(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}

// compactJSON produces the deterministic byte payload for a message value.
func compactJSON(raw json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
