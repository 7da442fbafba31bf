package mocks

import (
	"context"
	"io"
	"time"

	"insightapi/internal/model"
	"insightapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockTranscriptService struct {
	mock.Mock
}

func (m *MockTranscriptService) Ingest(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.Transcript, error) {
	args := m.Called(ctx, r, originalFilename, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transcript), args.Error(1)
}

func (m *MockTranscriptService) List(ctx context.Context, limit, offset int) (*service.TranscriptListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TranscriptListResult), args.Error(1)
}

func (m *MockTranscriptService) Get(ctx context.Context, id string) (*model.Transcript, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transcript), args.Error(1)
}

func (m *MockTranscriptService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTranscriptService) PresignDownload(ctx context.Context, id string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, id, expiry)
	return args.String(0), args.Error(1)
}
