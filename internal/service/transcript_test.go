package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"insightapi/internal/model"
	"insightapi/internal/repository"
	repoMocks "insightapi/internal/repository/mocks"
	"insightapi/internal/storage"
	storeMocks "insightapi/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func fixedClock(millis int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(millis).UTC() }
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Resume.pdf", "My_Resume.pdf"},
		{"a  b\tc\nd.txt", "a_b_c_d.txt"},
		{"plain.json", "plain.json"},
		{"  leading.txt", "_leading.txt"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in))
	}
}

func TestTranscriptService_Ingest(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name             string
		originalFilename string
		contentType      string
		size             int64
		noStore          bool
		setupMocks       func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockTranscriptRepository) io.Reader
		wantErr          error
		wantErrMsg       string
		check            func(t *testing.T, tr *model.Transcript)
	}{
		{
			name:             "happy path with registry row",
			originalFilename: "My Resume.pdf",
			contentType:      "application/pdf",
			size:             11,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockTranscriptRepository) io.Reader {
				r := strings.NewReader("hello world")
				mStore.On("Bucket").Return("interview-transcripts")
				mStore.On("Put", ctx, "transcripts/1700000000000-My_Resume.pdf", r, storage.PutObjectOptions{
					Size:        11,
					ContentType: "application/pdf",
					Metadata:    map[string]string{"original-filename": "My Resume.pdf"},
				}).Return(storage.ObjectInfo{
					Key:         "transcripts/1700000000000-My_Resume.pdf",
					Size:        11,
					ContentType: "application/pdf",
				}, nil)

				mRepo.On("Create", ctx, mock.MatchedBy(func(tr *model.Transcript) bool {
					return tr.ID != "" &&
						tr.StorageKey == "transcripts/1700000000000-My_Resume.pdf" &&
						tr.Locator == "s3://interview-transcripts/transcripts/1700000000000-My_Resume.pdf"
				})).Return(&model.Transcript{
					ID:      "stored-id",
					Locator: "s3://interview-transcripts/transcripts/1700000000000-My_Resume.pdf",
				}, nil)

				return r
			},
			check: func(t *testing.T, tr *model.Transcript) {
				assert.Equal(t, "stored-id", tr.ID)
				assert.True(t, strings.HasSuffix(tr.Locator, "transcripts/1700000000000-My_Resume.pdf"))
			},
		},
		{
			name:             "default content type",
			originalFilename: "notes.txt",
			size:             5,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockTranscriptRepository) io.Reader {
				r := strings.NewReader("hello")
				mStore.On("Bucket").Return("interview-transcripts")
				mStore.On("Put", ctx, mock.Anything, r, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
					return opt.ContentType == "application/octet-stream"
				})).Return(storage.ObjectInfo{Key: "transcripts/1700000000000-notes.txt", Size: 5}, nil)
				mRepo.On("Create", ctx, mock.Anything).
					Return(&model.Transcript{ID: "id"}, nil)
				return r
			},
		},
		{
			name:             "validation error - nil reader",
			originalFilename: "notes.txt",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockTranscriptRepository) io.Reader {
				return nil
			},
			wantErr: ErrReaderNil,
		},
		{
			name: "validation error - missing filename",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockTranscriptRepository) io.Reader {
				return strings.NewReader("hello")
			},
			wantErr: ErrFilenameRequired,
		},
		{
			name:             "unconfigured store",
			originalFilename: "notes.txt",
			noStore:          true,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockTranscriptRepository) io.Reader {
				return strings.NewReader("hello")
			},
			wantErr: ErrStorageUnavailable,
		},
		{
			name:             "store fault",
			originalFilename: "notes.txt",
			size:             5,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockTranscriptRepository) io.Reader {
				r := strings.NewReader("hello")
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
				return r
			},
			wantErr:    ErrStorageUnavailable,
			wantErrMsg: "storage fail",
		},
		{
			name:             "registry insert failure does not fail ingest",
			originalFilename: "notes.txt",
			size:             5,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockTranscriptRepository) io.Reader {
				r := strings.NewReader("hello")
				mStore.On("Bucket").Return("interview-transcripts")
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(storage.ObjectInfo{Key: "transcripts/1700000000000-notes.txt", Size: 5}, nil)
				mRepo.On("Create", ctx, mock.Anything).
					Return(nil, errors.New("db fail"))
				return r
			},
			check: func(t *testing.T, tr *model.Transcript) {
				assert.Equal(t, "s3://interview-transcripts/transcripts/1700000000000-notes.txt", tr.Locator)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockTranscriptRepository)

			var store storage.Storage
			if !tt.noStore {
				store = mStore
			}
			svc := NewTranscriptService(store, mRepo).(*transcriptService)
			svc.now = fixedClock(1700000000000)

			r := tt.setupMocks(mStore, mRepo)

			tr, err := svc.Ingest(ctx, r, tt.originalFilename, tt.contentType, tt.size)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.wantErrMsg != "" {
					assert.Contains(t, err.Error(), tt.wantErrMsg)
				}
				assert.Nil(t, tr)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, tr)
				if tt.check != nil {
					tt.check(t, tr)
				}
			}

			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestTranscriptService_Ingest_NoRegistry(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	mStore.On("Bucket").Return("interview-transcripts")
	mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{Key: "transcripts/1700000000000-a.txt", Size: 1}, nil)

	svc := NewTranscriptService(mStore, nil).(*transcriptService)
	svc.now = fixedClock(1700000000000)

	tr, err := svc.Ingest(ctx, strings.NewReader("a"), "a.txt", "text/plain", 1)
	assert.NoError(t, err)
	assert.Equal(t, "s3://interview-transcripts/transcripts/1700000000000-a.txt", tr.Locator)
	mStore.AssertExpectations(t)
}

func TestTranscriptService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		mRepo := new(repoMocks.MockTranscriptRepository)
		mRepo.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
			Return(&repository.PageResult[model.Transcript]{
				Items: []model.Transcript{{ID: "1"}, {ID: "2"}},
				Total: 2,
			}, nil)

		svc := NewTranscriptService(nil, mRepo)
		res, err := svc.List(ctx, 10, 0)

		assert.NoError(t, err)
		assert.Len(t, res.Items, 2)
		assert.Equal(t, 2, res.Total)
		mRepo.AssertExpectations(t)
	})

	t.Run("pagination boundary - zero limit uses default", func(t *testing.T) {
		mRepo := new(repoMocks.MockTranscriptRepository)
		mRepo.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
			Return(&repository.PageResult[model.Transcript]{Items: []model.Transcript{}, Total: 0}, nil)

		svc := NewTranscriptService(nil, mRepo)
		_, err := svc.List(ctx, 0, -1)

		assert.NoError(t, err)
		mRepo.AssertExpectations(t)
	})

	t.Run("registry unavailable", func(t *testing.T) {
		svc := NewTranscriptService(nil, nil)
		_, err := svc.List(ctx, 10, 0)
		assert.ErrorIs(t, err, ErrRegistryUnavailable)
	})
}

func TestTranscriptService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		mRepo := new(repoMocks.MockTranscriptRepository)
		mRepo.On("FindByID", ctx, "valid-id").Return(&model.Transcript{ID: "valid-id"}, nil)

		svc := NewTranscriptService(nil, mRepo)
		tr, err := svc.Get(ctx, "valid-id")

		assert.NoError(t, err)
		assert.Equal(t, "valid-id", tr.ID)
	})

	t.Run("validation - empty id", func(t *testing.T) {
		svc := NewTranscriptService(nil, new(repoMocks.MockTranscriptRepository))
		_, err := svc.Get(ctx, "")
		assert.ErrorIs(t, err, ErrIDRequired)
	})

	t.Run("not found - mapping sql.ErrNoRows", func(t *testing.T) {
		mRepo := new(repoMocks.MockTranscriptRepository)
		mRepo.On("FindByID", ctx, "missing-id").Return(nil, sql.ErrNoRows)

		svc := NewTranscriptService(nil, mRepo)
		_, err := svc.Get(ctx, "missing-id")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestTranscriptService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockTranscriptRepository)
		mRepo.On("FindByID", ctx, "valid-id").
			Return(&model.Transcript{ID: "valid-id", StorageKey: "transcripts/1-a.txt"}, nil)
		mStore.On("Delete", ctx, "transcripts/1-a.txt").Return(nil)
		mRepo.On("Delete", ctx, "valid-id").Return(nil)

		svc := NewTranscriptService(mStore, mRepo)
		assert.NoError(t, svc.Delete(ctx, "valid-id"))
		mStore.AssertExpectations(t)
		mRepo.AssertExpectations(t)
	})

	t.Run("storage delete error keeps registry row", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockTranscriptRepository)
		mRepo.On("FindByID", ctx, "id").
			Return(&model.Transcript{ID: "id", StorageKey: "transcripts/1-a.txt"}, nil)
		mStore.On("Delete", ctx, "transcripts/1-a.txt").Return(errors.New("storage fail"))

		svc := NewTranscriptService(mStore, mRepo)
		err := svc.Delete(ctx, "id")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "delete storage")
		mRepo.AssertNotCalled(t, "Delete", ctx, "id")
	})

	t.Run("not found", func(t *testing.T) {
		mRepo := new(repoMocks.MockTranscriptRepository)
		mRepo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)

		svc := NewTranscriptService(nil, mRepo)
		assert.ErrorIs(t, svc.Delete(ctx, "missing"), ErrNotFound)
	})
}

func TestTranscriptService_PresignDownload(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockTranscriptRepository)
		mRepo.On("FindByID", ctx, "id").
			Return(&model.Transcript{ID: "id", StorageKey: "transcripts/1-a.txt"}, nil)
		mStore.On("PresignGet", ctx, "transcripts/1-a.txt", 15*time.Minute).
			Return("https://store.example/signed", nil)

		svc := NewTranscriptService(mStore, mRepo)
		u, err := svc.PresignDownload(ctx, "id", 15*time.Minute)

		assert.NoError(t, err)
		assert.Equal(t, "https://store.example/signed", u)
	})

	t.Run("unconfigured store", func(t *testing.T) {
		mRepo := new(repoMocks.MockTranscriptRepository)
		mRepo.On("FindByID", ctx, "id").
			Return(&model.Transcript{ID: "id", StorageKey: "k"}, nil)

		svc := NewTranscriptService(nil, mRepo)
		_, err := svc.PresignDownload(ctx, "id", time.Minute)
		assert.ErrorIs(t, err, ErrStorageUnavailable)
	})
}
