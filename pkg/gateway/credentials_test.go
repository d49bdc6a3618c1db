package gateway

import (
	"encoding/json"
	"testing"

	"cloud.google.com/go/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestResolveCredentials(t *testing.T) {
	scopes := []string{pubsub.ScopePubSub}

	testCases := []struct {
		name         string
		raw          string
		expectedKind CredentialKind
		expectErr    bool
	}{
		{"Absent uses ambient identity", ``, CredentialDefault, false},
		{"Explicit null uses ambient identity", `null`, CredentialDefault, false},
		{"Structured object is a service account", `{"type":"service_account","project_id":"p"}`, CredentialServiceAccount, false},
		{"String parsing as JSON object is a service account", `"{\"type\":\"service_account\"}"`, CredentialServiceAccount, false},
		{"Opaque string is a bearer token", `"ya29.abc"`, CredentialBearerToken, false},
		{"Numeric string is a bearer token", `"12345"`, CredentialBearerToken, false},
		{"Array is rejected", `["nope"]`, CredentialDefault, true},
		{"Number is rejected", `42`, CredentialDefault, true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			spec, err := ResolveCredentials(json.RawMessage(tc.raw), scopes)

			if tc.expectErr {
				require.Error(t, err)
				assert.Equal(t, ErrBadRequest, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedKind, spec.Kind)
		})
	}
}

func TestResolveCredentials_BearerCarriesTokenAndScopes(t *testing.T) {
	scopes := []string{"https://www.googleapis.com/auth/custom"}
	spec, err := ResolveCredentials(json.RawMessage(`"ya29.abc"`), scopes)
	require.NoError(t, err)

	assert.Equal(t, "ya29.abc", spec.Token)
	assert.Equal(t, scopes, spec.Scopes)
	assert.Len(t, spec.ClientOptions(), 2)
}

func TestResolveCredentials_ServiceAccountCarriesKey(t *testing.T) {
	raw := `{"type":"service_account","project_id":"p"}`
	spec, err := ResolveCredentials(json.RawMessage(raw), nil)
	require.NoError(t, err)

	assert.JSONEq(t, raw, string(spec.ServiceAccount))
	assert.Len(t, spec.ClientOptions(), 1)
}

func TestResolveCredentials_DefaultHasNoOptions(t *testing.T) {
	spec, err := ResolveCredentials(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, spec.ClientOptions())
}

func TestParseScopes(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  []string
		expectErr bool
	}{
		{"Absent defaults to the publish scope", ``, []string{pubsub.ScopePubSub}, false},
		{"Null defaults to the publish scope", `null`, []string{pubsub.ScopePubSub}, false},
		{"Single string", `"https://www.googleapis.com/auth/custom"`, []string{"https://www.googleapis.com/auth/custom"}, false},
		{"List of strings", `["a","b"]`, []string{"a", "b"}, false},
		{"Empty list defaults", `[]`, []string{pubsub.ScopePubSub}, false},
		{"Object is rejected", `{"scope":"a"}`, nil, true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			scopes, err := parseScopes(json.RawMessage(tc.raw))

			if tc.expectErr {
				require.Error(t, err)
				assert.Equal(t, ErrBadRequest, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, scopes)
		})
	}
}

func TestClassifyBusError(t *testing.T) {
	scopes := []string{pubsub.ScopePubSub}

	t.Run("Permission denied maps to auth failure", func(t *testing.T) {
		err := classifyBusError(status.Error(codes.PermissionDenied, "denied"), scopes)
		assert.Equal(t, ErrAuthFailure, err.Kind)
		assert.Equal(t, scopes, err.RequiredScopes)
	})

	t.Run("Unauthenticated maps to auth failure", func(t *testing.T) {
		err := classifyBusError(status.Error(codes.Unauthenticated, "who are you"), scopes)
		assert.Equal(t, ErrAuthFailure, err.Kind)
	})

	t.Run("Other codes map to unexpected", func(t *testing.T) {
		err := classifyBusError(status.Error(codes.Unavailable, "try later"), scopes)
		assert.Equal(t, ErrUnexpected, err.Kind)
	})
}
