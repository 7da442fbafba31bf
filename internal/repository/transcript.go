package repository

import (
	"context"

	"insightapi/internal/model"
)

// TranscriptRepository defines data access for the transcript registry using
// SQL queries only. No business logic here, strictly persistence operations.
type TranscriptRepository interface {
	// Create inserts a new transcript record.
	// The caller provides required fields (e.g., ID, CreatedAt) according to the schema defaults.
	// Returns the stored record (may include values set by the DB).
	Create(ctx context.Context, tr *model.Transcript) (*model.Transcript, error)

	// FindByID returns a transcript record by its ID.
	FindByID(ctx context.Context, id string) (*model.Transcript, error)

	// List returns a paginated list of transcript records and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Transcript], error)

	// Delete removes a record by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
