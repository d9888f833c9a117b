package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"legaldata-backend/config"
	"legaldata-backend/models"

	"github.com/google/uuid"
)

// Storage interface for blob storage operations
type Storage interface {
	// Upload stores a file under its category prefix and returns the storage path
	Upload(ctx context.Context, category models.FileCategory, fileID uuid.UUID, filename string, data io.Reader) (string, error)

	// Download retrieves a file by storage path
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// Delete removes a file by storage path
	Delete(ctx context.Context, storagePath string) error

	// TemporaryURL mints a time-limited access URL for a stored file
	TemporaryURL(ctx context.Context, storagePath string, ttl time.Duration) (string, error)
}

// NewStorage creates a storage instance from the application configuration
func NewStorage(cfg *config.Config) (Storage, error) {
	switch cfg.StorageType {
	case config.StorageTypeLocal:
		return NewLocalStorage(cfg.StorageLocalPath, cfg.LinkSigningSecret)
	case config.StorageTypeS3:
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.StorageType)
	}
}

// generateStoragePath generates a unique storage path for a file. The path
// carries the category prefix and the file ID so identically named uploads
// never collide.
func generateStoragePath(category models.FileCategory, fileID uuid.UUID, filename string) string {
	ext := filepath.Ext(filename)
	baseName := strings.TrimSuffix(filepath.Base(filename), ext)
	// Sanitize filename
	baseName = strings.ReplaceAll(baseName, " ", "_")
	baseName = strings.ReplaceAll(baseName, "/", "_")
	baseName = strings.ReplaceAll(baseName, "\\", "_")

	return fmt.Sprintf("%s/%s_%s%s", category, fileID.String(), baseName, ext)
}

// ContentType determines a content type from a filename
func ContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".xls":
		return "application/vnd.ms-excel"
	default:
		return "application/octet-stream"
	}
}
