package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"safebite/internal/port"
)

// MockReasoningGateway is a mock implementation of port.ReasoningGateway.
type MockReasoningGateway struct {
	mock.Mock
}

func (m *MockReasoningGateway) Explain(ctx context.Context, input port.ExplainInput) (*port.ExplainOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ExplainOutput), args.Error(1)
}

// MockAdviceCache is a mock implementation of port.AdviceCache.
type MockAdviceCache struct {
	mock.Mock
}

func (m *MockAdviceCache) Get(ctx context.Context, key string) (*port.ExplainOutput, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*port.ExplainOutput), args.Bool(1), args.Error(2)
}

func (m *MockAdviceCache) Set(ctx context.Context, key string, out *port.ExplainOutput) error {
	args := m.Called(ctx, key, out)
	return args.Error(0)
}
