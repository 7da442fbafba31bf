package mocks

import (
	"context"

	"insightapi/internal/model"
	"insightapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockTranscriptRepository struct {
	mock.Mock
}

func (m *MockTranscriptRepository) Create(ctx context.Context, tr *model.Transcript) (*model.Transcript, error) {
	args := m.Called(ctx, tr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transcript), args.Error(1)
}

func (m *MockTranscriptRepository) FindByID(ctx context.Context, id string) (*model.Transcript, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transcript), args.Error(1)
}

func (m *MockTranscriptRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Transcript], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Transcript]), args.Error(1)
}

func (m *MockTranscriptRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
