package storage

import (
	"context"
	"io"
	"time"
)

// Package storage contains the blob store abstraction for the transcript
// store (S3-compatible). Implementations must avoid using local disk and
// rely on streaming I/O only. Keys written by the ingestion pipeline are
// later read by an external indexing/search system, so they must be stable.

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
// ContentType and Metadata are optional.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
// It is configured once at process start and is safe for concurrent use.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	// The write is all-or-nothing: either the full object lands or an error is returned.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	// Bucket returns the bucket the client writes into, for locator construction.
	Bucket() string
}
