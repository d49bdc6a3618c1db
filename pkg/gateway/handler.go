package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Publisher is the relay surface the HTTP layer depends on.
type Publisher interface {
	Publish(ctx context.Context, req *PublishRequest) (*PublishOutcome, error)
}

// API serves the gateway's HTTP surface.
type API struct {
	publisher Publisher
	metrics   *Metrics
	logger    zerolog.Logger
}

// NewAPI creates the HTTP handler set for the gateway.
func NewAPI(publisher Publisher, metrics *Metrics, logger zerolog.Logger) *API {
	return &API{
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With().Str("component", "API").Logger(),
	}
}

type publishResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
	Timestamp string `json:"timestamp"`
}

type errorResponse struct {
	Error          string   `json:"error"`
	Message        string   `json:"message,omitempty"`
	RequiresScopes []string `json:"requiresScopes,omitempty"`
}

// HandleHealth is the process-level liveness probe.
func (a *API) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// HandlePublish decodes a publish request, hands it to the relay and maps the
// outcome onto the HTTP error taxonomy.
func (a *API) HandlePublish(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.metrics.ObservePublish("bad_request", time.Since(start))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Request body must be valid JSON"})
		return
	}

	outcome, err := a.publisher.Publish(r.Context(), &req)
	if err != nil {
		a.writeError(w, &req, err, start)
		return
	}

	a.metrics.ObservePublish("success", time.Since(start))
	writeJSON(w, http.StatusOK, publishResponse{
		Success:   true,
		MessageID: outcome.MessageID,
		Timestamp: outcome.Timestamp.Format(time.RFC3339Nano),
	})
}

func (a *API) writeError(w http.ResponseWriter, req *PublishRequest, err error, start time.Time) {
	var relayErr *RelayError
	if !errors.As(err, &relayErr) {
		relayErr = newRelayError(ErrUnexpected, "Failed to publish message", err)
	}

	switch relayErr.Kind {
	case ErrMissingTopic, ErrMissingMessage, ErrBadRequest:
		a.metrics.ObservePublish("bad_request", time.Since(start))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: relayErr.Message})
	case ErrAuthFailure:
		a.metrics.ObservePublish("auth_failure", time.Since(start))
		writeJSON(w, http.StatusForbidden, errorResponse{
			Error:          "Permission denied",
			Message:        relayErr.Message,
			RequiresScopes: relayErr.RequiredScopes,
		})
	case ErrTopicNotFound:
		a.metrics.ObservePublish("topic_not_found", time.Since(start))
		writeJSON(w, http.StatusNotFound, errorResponse{Error: relayErr.Message})
	default:
		a.metrics.ObservePublish("unexpected", time.Since(start))
		// Underlying detail stays in the server-side log, not the response.
		a.logger.Error().Err(relayErr).Str("topic", req.Topic).Msg("Unexpected failure handling publish request")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to publish message"})
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
