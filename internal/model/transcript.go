package model

import "time"

// Transcript represents one uploaded interview transcript persisted to the
// object store, plus its registry metadata.
// This is a pure domain model with no database-specific dependencies or tags.
type Transcript struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	StorageKey  string    `json:"storage_key"`
	Locator     string    `json:"locator"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}
