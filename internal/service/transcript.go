package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"time"

	"github.com/google/uuid"

	"insightapi/internal/model"
	"insightapi/internal/repository"
	"insightapi/internal/repository/postgres"
	"insightapi/internal/storage"
)

var (
	ErrReaderNil           = errors.New("file payload is required")
	ErrFilenameRequired    = errors.New("filename is required")
	ErrIDRequired          = errors.New("id is required")
	ErrNotFound            = errors.New("transcript not found")
	ErrStorageUnavailable  = errors.New("transcript store unavailable")
	ErrRegistryUnavailable = errors.New("transcript registry is not configured")
)

// keyPrefix is the fixed namespace for every transcript object. The external
// indexing system watches this prefix.
const keyPrefix = "transcripts/"

var whitespaceRun = regexp.MustCompile(`\s+`)

// TranscriptListResult is the service-level DTO for paginated registry rows.
type TranscriptListResult struct {
	Items []model.Transcript `json:"data"`
	Total int                `json:"total"`
}

// TranscriptService defines the use cases for transcript ingestion and the
// registry built on top of it.
type TranscriptService interface {
	// Ingest validates the payload, derives the object key, persists the bytes
	// to the store, and returns the stored transcript with its locator.
	// The registry row is best-effort: a failed insert is logged, not surfaced.
	Ingest(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.Transcript, error)

	// List returns registry rows using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*TranscriptListResult, error)

	// Get returns a single registry row by its ID.
	Get(ctx context.Context, id string) (*model.Transcript, error)

	// Delete removes a transcript from both the store and the registry.
	Delete(ctx context.Context, id string) error

	// PresignDownload returns a time-limited URL for the stored object.
	PresignDownload(ctx context.Context, id string, expiry time.Duration) (string, error)
}

// transcriptService is a concrete implementation of TranscriptService.
// Either dependency may be nil: a nil store means the ingestion pipeline is
// disabled (every Ingest fails with ErrStorageUnavailable), a nil repo
// means registry operations are disabled and ingests skip the metadata write.
type transcriptService struct {
	store storage.Storage
	repo  repository.TranscriptRepository

	// now is injectable so key derivation is testable at a fixed instant.
	now func() time.Time
}

// NewTranscriptService constructs a new TranscriptService.
func NewTranscriptService(store storage.Storage, repo repository.TranscriptRepository) TranscriptService {
	return &transcriptService{store: store, repo: repo, now: time.Now}
}

// SanitizeFilename collapses every run of whitespace to a single underscore.
// No other characters are rewritten; path separators and control characters
// pass through into the key unchanged.
func SanitizeFilename(name string) string {
	return whitespaceRun.ReplaceAllString(name, "_")
}

func (s *transcriptService) Ingest(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.Transcript, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if originalFilename == "" {
		return nil, ErrFilenameRequired
	}
	if s.store == nil {
		return nil, fmt.Errorf("%w: store is not configured", ErrStorageUnavailable)
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Key: fixed prefix + millisecond timestamp + sanitized display name.
	// Two uploads of the same name in the same millisecond collide and the
	// later write wins; this race is accepted.
	safeName := SanitizeFilename(originalFilename)
	key := fmt.Sprintf("%s%d-%s", keyPrefix, s.now().UnixMilli(), safeName)

	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	tr := &model.Transcript{
		ID:          uuid.New().String(),
		Filename:    originalFilename,
		StorageKey:  objInfo.Key,
		Locator:     fmt.Sprintf("s3://%s/%s", s.store.Bucket(), objInfo.Key),
		Size:        objInfo.Size,
		ContentType: contentType,
		CreatedAt:   s.now().UTC(),
	}

	// The locator is the contract; the registry row is supporting metadata.
	// No compensating delete is issued on insert failure.
	if s.repo != nil {
		if stored, err := s.repo.Create(ctx, tr); err != nil {
			logEvent(map[string]any{
				"component":   "ingest",
				"event":       "registry_insert_failed",
				"level":       "error",
				"storage_key": tr.StorageKey,
				"error":       err.Error(),
			})
		} else {
			tr = stored
		}
	}

	return tr, nil
}

// List returns paginated registry rows without exposing repository types.
func (s *transcriptService) List(ctx context.Context, limit, offset int) (*TranscriptListResult, error) {
	if s.repo == nil {
		return nil, ErrRegistryUnavailable
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &TranscriptListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a registry row by ID.
func (s *transcriptService) Get(ctx context.Context, id string) (*model.Transcript, error) {
	if s.repo == nil {
		return nil, ErrRegistryUnavailable
	}
	if id == "" {
		return nil, ErrIDRequired
	}
	tr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if postgres.IsNoRowsError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return tr, nil
}

// Delete removes the object from the store, then deletes its registry row.
func (s *transcriptService) Delete(ctx context.Context, id string) error {
	if s.repo == nil {
		return ErrRegistryUnavailable
	}
	if id == "" {
		return ErrIDRequired
	}
	tr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if postgres.IsNoRowsError(err) {
			return ErrNotFound
		}
		return err
	}
	if s.store == nil {
		return fmt.Errorf("%w: store is not configured", ErrStorageUnavailable)
	}
	// Delete from storage first; if this fails, keep the row so the object
	// reference is not lost.
	if err := s.store.Delete(ctx, tr.StorageKey); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, id)
}

// PresignDownload returns a time-limited download URL for the stored object.
func (s *transcriptService) PresignDownload(ctx context.Context, id string, expiry time.Duration) (string, error) {
	tr, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if s.store == nil {
		return "", fmt.Errorf("%w: store is not configured", ErrStorageUnavailable)
	}
	return s.store.PresignGet(ctx, tr.StorageKey, expiry)
}

func logEvent(data map[string]any) {
	data["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal log event: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
