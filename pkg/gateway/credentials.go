package gateway

import (
	"encoding/json"
	"strings"

	"cloud.google.com/go/pubsub"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

// CredentialKind identifies which identity a request publishes as.
type CredentialKind int

const (
	// CredentialDefault uses the ambient identity of the process.
	CredentialDefault CredentialKind = iota
	// CredentialServiceAccount authenticates with a caller-supplied service-account key.
	CredentialServiceAccount
	// CredentialBearerToken attaches a caller-supplied access token to outgoing calls.
	CredentialBearerToken
)

func (k CredentialKind) String() string {
	switch k {
	case CredentialServiceAccount:
		return "service_account"
	case CredentialBearerToken:
		return "bearer_token"
	default:
		return "default"
	}
}

// AuthSpec is the authentication context resolved for a single publish
// request. It is never cached or shared between requests.
type AuthSpec struct {
	Kind           CredentialKind
	ServiceAccount []byte
	Token          string
	Scopes         []string
}

// ResolveCredentials dispatches once on the shape of the request's
// credentials field: absent uses the ambient identity, a JSON object (or a
// string that parses as one) is a service-account key, and any other string
// is a bearer access token scoped by the supplied scopes.
func ResolveCredentials(raw json.RawMessage, scopes []string) (*AuthSpec, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return &AuthSpec{Kind: CredentialDefault}, nil
	}

	switch trimmed[0] {
	case '{':
		return &AuthSpec{Kind: CredentialServiceAccount, ServiceAccount: []byte(trimmed)}, nil
	case '"':
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, newRelayError(ErrBadRequest, "Credentials must be an object or a string", err)
		}
		var keyObject map[string]interface{}
		if err := json.Unmarshal([]byte(value), &keyObject); err == nil {
			return &AuthSpec{Kind: CredentialServiceAccount, ServiceAccount: []byte(value)}, nil
		}
		return &AuthSpec{Kind: CredentialBearerToken, Token: value, Scopes: scopes}, nil
	default:
		return nil, newRelayError(ErrBadRequest, "Credentials must be an object or a string", nil)
	}
}

// ClientOptions translates the resolved context into options for the bus client.
func (s *AuthSpec) ClientOptions() []option.ClientOption {
	switch s.Kind {
	case CredentialServiceAccount:
		return []option.ClientOption{option.WithCredentialsJSON(s.ServiceAccount)}
	case CredentialBearerToken:
		source := oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: s.Token,
			TokenType:   "Bearer",
		})
		return []option.ClientOption{
			option.WithTokenSource(source),
			option.WithScopes(s.Scopes...),
		}
	default:
		return nil
	}
}

// parseScopes accepts the request's scope field as either a single string or
// a list, defaulting to the Pub/Sub scope.
func parseScopes(raw json.RawMessage) ([]string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return []string{pubsub.ScopePubSub}, nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return []string{pubsub.ScopePubSub}, nil
		}
		return []string{single}, nil
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		if len(many) == 0 {
			return []string{pubsub.ScopePubSub}, nil
		}
		return many, nil
	}

	return nil, newRelayError(ErrBadRequest, "Scope must be a string or a list of strings", nil)
}
