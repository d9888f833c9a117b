package models

import (
	"time"

	"github.com/google/uuid"
)

// FileCategory selects the logical container a blob is stored in.
type FileCategory string

const (
	CategoryInternal        FileCategory = "internal"
	CategoryAttorneyHistory FileCategory = "attorney-history"
)

// StoredFile represents an uploaded document's metadata
type StoredFile struct {
	ID          uuid.UUID    `json:"id"`
	Category    FileCategory `json:"category"`
	Filename    string       `json:"filename"`
	MimeType    string       `json:"mime_type"`
	Size        int64        `json:"size"`
	StoragePath string       `json:"storage_path"`
	CreatedAt   time.Time    `json:"created_at"`
}
