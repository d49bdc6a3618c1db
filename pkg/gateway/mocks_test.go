package gateway_test

import (
	"context"

	"github.com/illmade-knight/go-pubsub-gateway/pkg/messaging"
	"github.com/stretchr/testify/mock"
)

// --- Mocks for the messaging collaborator boundary ---

type MockTopic struct {
	mock.Mock
}

func (m *MockTopic) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockTopic) Exists(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockTopic) Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error) {
	args := m.Called(ctx, data, attributes)
	return args.String(0), args.Error(1)
}

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Topic(id string) messaging.Topic {
	args := m.Called(id)
	return args.Get(0).(messaging.Topic)
}

func (m *MockClient) Close() error {
	args := m.Called()
	return args.Error(0)
}
