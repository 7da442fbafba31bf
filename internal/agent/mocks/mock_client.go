package mocks

import (
	"context"

	"insightapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Ask(ctx context.Context, query, sessionID string, history []model.ChatTurn) (string, error) {
	args := m.Called(ctx, query, sessionID, history)
	return args.String(0), args.Error(1)
}
