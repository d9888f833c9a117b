package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"legaldata-backend/models"
	"legaldata-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FileRepository is the store surface the file handler needs.
type FileRepository interface {
	Create(ctx context.Context, file *models.StoredFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.StoredFile, error)
	ListByCategory(ctx context.Context, category models.FileCategory) ([]*models.StoredFile, error)
}

// FileHandler handles HTTP requests for file operations
type FileHandler struct {
	fileRepo    FileRepository
	storage     storage.Storage
	linkTTL     time.Duration
	maxFileSize int64
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileRepo FileRepository, store storage.Storage, linkTTL time.Duration, maxFileSize int64) *FileHandler {
	return &FileHandler{
		fileRepo:    fileRepo,
		storage:     store,
		linkTTL:     linkTTL,
		maxFileSize: maxFileSize,
	}
}

// fileView is the list representation of a stored file, including its
// temporary download link.
type fileView struct {
	ID           uuid.UUID `json:"id"`
	Filename     string    `json:"filename"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
	TemporaryURL string    `json:"temporary_url"`
}

// UploadFile handles POST /upload/internal and /upload/attorney-history
func (h *FileHandler) UploadFile(category models.FileCategory) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			respondError(c, http.StatusBadRequest, "MISSING_FILE", "File is required")
			return
		}

		if fileHeader.Size > h.maxFileSize {
			respondError(c, http.StatusBadRequest, "FILE_TOO_LARGE",
				fmt.Sprintf("File size exceeds maximum of %d bytes", h.maxFileSize))
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, http.StatusInternalServerError, "FILE_OPEN_ERROR", err.Error())
			return
		}
		defer file.Close()

		mimeType := fileHeader.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = storage.ContentType(fileHeader.Filename)
		}

		fileID := uuid.New()

		storagePath, err := h.storage.Upload(c.Request.Context(), category, fileID, fileHeader.Filename, file)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "UPLOAD_FAILED",
				fmt.Sprintf("Failed to upload file: %v", err))
			return
		}

		record := &models.StoredFile{
			ID:          fileID,
			Category:    category,
			Filename:    fileHeader.Filename,
			MimeType:    mimeType,
			Size:        fileHeader.Size,
			StoragePath: storagePath,
		}

		if err := h.fileRepo.Create(c.Request.Context(), record); err != nil {
			// Don't leave an orphan object behind.
			h.storage.Delete(c.Request.Context(), storagePath)
			respondDomainError(c, err)
			return
		}

		respondOK(c, http.StatusCreated, gin.H{
			"id":         record.ID,
			"category":   record.Category,
			"filename":   record.Filename,
			"mime_type":  record.MimeType,
			"size":       record.Size,
			"created_at": record.CreatedAt,
		})
	}
}

// ListFiles handles GET /list/internal and /list/attorney-history. Every
// entry carries a time-limited download link.
func (h *FileHandler) ListFiles(category models.FileCategory) gin.HandlerFunc {
	return func(c *gin.Context) {
		files, err := h.fileRepo.ListByCategory(c.Request.Context(), category)
		if err != nil {
			respondDomainError(c, err)
			return
		}

		views := make([]fileView, 0, len(files))
		for _, f := range files {
			url, err := h.storage.TemporaryURL(c.Request.Context(), f.StoragePath, h.linkTTL)
			if err != nil {
				respondError(c, http.StatusInternalServerError, "LINK_FAILED",
					fmt.Sprintf("Failed to create download link: %v", err))
				return
			}
			views = append(views, fileView{
				ID:           f.ID,
				Filename:     f.Filename,
				MimeType:     f.MimeType,
				Size:         f.Size,
				CreatedAt:    f.CreatedAt,
				TemporaryURL: url,
			})
		}

		respondOK(c, http.StatusOK, gin.H{
			"files": views,
			"count": len(views),
		})
	}
}

// GetFile handles GET /files/:id
func (h *FileHandler) GetFile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid file ID format")
		return
	}

	file, err := h.fileRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	reader, err := h.storage.Download(c.Request.Context(), file.StoragePath)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DOWNLOAD_FAILED",
			fmt.Sprintf("Failed to download file: %v", err))
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.DataFromReader(http.StatusOK, file.Size, file.MimeType, reader, nil)
}

// DownloadSigned handles GET /files/signed, the target of temporary links
// minted by the local storage backend. Expired or tampered links get 403.
func (h *FileHandler) DownloadSigned(c *gin.Context) {
	local, ok := h.storage.(*storage.LocalStorage)
	if !ok {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Signed downloads are only served by local storage")
		return
	}

	path := c.Query("path")
	exp := c.Query("exp")
	sig := c.Query("sig")

	if err := local.VerifySignedPath(path, exp, sig); err != nil {
		if errors.Is(err, storage.ErrLinkExpired) {
			respondError(c, http.StatusForbidden, "LINK_EXPIRED", "Download link has expired")
			return
		}
		respondError(c, http.StatusForbidden, "LINK_INVALID", "Download link is invalid")
		return
	}

	reader, err := local.Download(c.Request.Context(), path)
	if err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "File not found")
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, -1, storage.ContentType(path), reader, nil)
}
