package service

import (
	"context"
	"io"
)

// Aggregate status strings reported for one multi-file upload batch. The
// batch never enumerates per-file failures; a single status covers it.
const (
	BatchStatusUploaded = "Uploaded to secure transcript store."
	BatchStatusNoPaths  = "Upload completed, but no storage paths were returned."
	BatchStatusFailed   = "Upload failed. Please check the backend logs / configuration."
)

// BatchFile is one file in a user-initiated multi-file selection.
type BatchFile struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// UploadBatchResult reduces a batch to its aggregate status and the locators
// collected before any failure.
type UploadBatchResult struct {
	Status   string   `json:"status"`
	Locators []string `json:"paths"`
}

// UploadBatchService fans a multi-file selection out into sequential ingest
// calls and reduces the outcomes into a single status.
type UploadBatchService interface {
	// UploadAll processes files strictly in order. The first failure aborts
	// the remaining sequence; the returned error is that first failure and
	// the result carries the failure status. There is no retry.
	UploadAll(ctx context.Context, files []BatchFile) (*UploadBatchResult, error)
}

type uploadBatchService struct {
	transcripts TranscriptService
}

// NewUploadBatchService constructs an UploadBatchService on top of the
// ingestion pipeline.
func NewUploadBatchService(transcripts TranscriptService) UploadBatchService {
	return &uploadBatchService{transcripts: transcripts}
}

func (s *uploadBatchService) UploadAll(ctx context.Context, files []BatchFile) (*UploadBatchResult, error) {
	locators := make([]string, 0, len(files))

	// Sequential on purpose: file i+1 does not begin until file i has fully
	// succeeded, which bounds store load and makes the status a simple count.
	for _, f := range files {
		tr, err := s.transcripts.Ingest(ctx, f.Reader, f.Filename, f.ContentType, f.Size)
		if err != nil {
			return &UploadBatchResult{Status: BatchStatusFailed}, err
		}
		if tr.Locator != "" {
			locators = append(locators, tr.Locator)
		}
	}

	if len(locators) == 0 {
		return &UploadBatchResult{Status: BatchStatusNoPaths, Locators: locators}, nil
	}
	return &UploadBatchResult{Status: BatchStatusUploaded, Locators: locators}, nil
}
