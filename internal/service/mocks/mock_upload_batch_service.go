package mocks

import (
	"context"

	"insightapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockUploadBatchService struct {
	mock.Mock
}

func (m *MockUploadBatchService) UploadAll(ctx context.Context, files []service.BatchFile) (*service.UploadBatchResult, error) {
	args := m.Called(ctx, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadBatchResult), args.Error(1)
}
