package gateway

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorKind classifies a relay failure for HTTP response mapping.
type ErrorKind int

const (
	ErrUnexpected ErrorKind = iota
	ErrMissingTopic
	ErrMissingMessage
	ErrBadRequest
	ErrAuthFailure
	ErrTopicNotFound
)

// RelayError carries the taxonomy kind plus an operator-safe message for the
// response body. The wrapped error holds the underlying detail and is only
// ever written to server-side logs.
type RelayError struct {
	Kind           ErrorKind
	Message        string
	RequiredScopes []string
	Err            error
}

func (e *RelayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RelayError) Unwrap() error { return e.Err }

func newRelayError(kind ErrorKind, message string, err error) *RelayError {
	return &RelayError{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the taxonomy kind from any error, defaulting to ErrUnexpected.
func KindOf(err error) ErrorKind {
	var relayErr *RelayError
	if errors.As(err, &relayErr) {
		return relayErr.Kind
	}
	return ErrUnexpected
}

// isPermissionError reports whether the bus rejected a call for
// authentication or authorization reasons.
func isPermissionError(err error) bool {
	switch status.Code(err) {
	case codes.PermissionDenied, codes.Unauthenticated:
		return true
	default:
		return false
	}
}

// classifyBusError remaps a bus failure onto the taxonomy: known permission
// codes become AuthFailure with scope guidance, everything else is Unexpected.
func classifyBusError(err error, scopes []string) *RelayError {
	if isPermissionError(err) {
		return &RelayError{
			Kind: ErrAuthFailure,
			Message: "The supplied credentials are not permitted to publish to this topic. " +
				"Grant the pubsub.topics.publish permission or supply credentials with the required scope.",
			RequiredScopes: scopes,
			Err:            err,
		}
	}
	return newRelayError(ErrUnexpected, "Failed to publish message", err)
}
