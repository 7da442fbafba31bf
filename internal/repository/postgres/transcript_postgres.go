package postgres

import (
	"context"
	"database/sql"
	"errors"

	"insightapi/internal/model"
	"insightapi/internal/repository"
)

// TranscriptPostgres is a PostgreSQL implementation of repository.TranscriptRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type TranscriptPostgres struct {
	db *sql.DB
}

// NewTranscriptPostgres creates a new TranscriptPostgres repository.
func NewTranscriptPostgres(db *sql.DB) *TranscriptPostgres {
	return &TranscriptPostgres{db: db}
}

var _ repository.TranscriptRepository = (*TranscriptPostgres)(nil)

// IsNoRowsError reports whether err means the queried row does not exist.
func IsNoRowsError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// Create inserts a new transcript row and returns the stored record.
func (r *TranscriptPostgres) Create(ctx context.Context, tr *model.Transcript) (*model.Transcript, error) {
	const q = `
		INSERT INTO transcripts (id, filename, storage_key, locator, size, content_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, filename, storage_key, locator, size, content_type, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		tr.ID,
		tr.Filename,
		tr.StorageKey,
		tr.Locator,
		tr.Size,
		tr.ContentType,
		tr.CreatedAt,
	)
	var out model.Transcript
	if err := row.Scan(
		&out.ID,
		&out.Filename,
		&out.StorageKey,
		&out.Locator,
		&out.Size,
		&out.ContentType,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single transcript record by its ID.
func (r *TranscriptPostgres) FindByID(ctx context.Context, id string) (*model.Transcript, error) {
	const q = `
		SELECT id, filename, storage_key, locator, size, content_type, created_at
		FROM transcripts
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var tr model.Transcript
	if err := row.Scan(
		&tr.ID,
		&tr.Filename,
		&tr.StorageKey,
		&tr.Locator,
		&tr.Size,
		&tr.ContentType,
		&tr.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &tr, nil
}

// List returns transcript records using LIMIT/OFFSET pagination and a total count.
func (r *TranscriptPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Transcript], error) {
	// Count total rows
	const qCount = `SELECT COUNT(*) FROM transcripts`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	// Fetch page
	const qList = `
		SELECT id, filename, storage_key, locator, size, content_type, created_at
		FROM transcripts
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Transcript, 0)
	for rows.Next() {
		var tr model.Transcript
		if err := rows.Scan(
			&tr.ID,
			&tr.Filename,
			&tr.StorageKey,
			&tr.Locator,
			&tr.Size,
			&tr.ContentType,
			&tr.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Transcript]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a transcript record by ID. It does not return an error if the row does not exist.
func (r *TranscriptPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM transcripts WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
