package repository

import (
	"context"

	"legaldata-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FileRepository handles database operations for stored file metadata
type FileRepository struct {
	db *pgxpool.Pool
}

// NewFileRepository creates a new file repository
func NewFileRepository(db *pgxpool.Pool) *FileRepository {
	return &FileRepository{db: db}
}

// Create inserts a new file record
func (r *FileRepository) Create(ctx context.Context, file *models.StoredFile) error {
	query := `
		INSERT INTO files (
			id, category, filename, mime_type, size, storage_path
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.QueryRow(
		ctx, query,
		file.ID,
		file.Category,
		file.Filename,
		file.MimeType,
		file.Size,
		file.StoragePath,
	).Scan(&file.CreatedAt)

	return translateError(err)
}

// GetByID retrieves a file record by ID
func (r *FileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StoredFile, error) {
	file := &models.StoredFile{}
	query := `
		SELECT id, category, filename, mime_type, size, storage_path, created_at
		FROM files
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&file.ID,
		&file.Category,
		&file.Filename,
		&file.MimeType,
		&file.Size,
		&file.StoragePath,
		&file.CreatedAt,
	)

	if err != nil {
		return nil, translateError(err)
	}

	return file, nil
}

// ListByCategory retrieves all file records in a category
func (r *FileRepository) ListByCategory(ctx context.Context, category models.FileCategory) ([]*models.StoredFile, error) {
	query := `
		SELECT id, category, filename, mime_type, size, storage_path, created_at
		FROM files
		WHERE category = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, category)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var files []*models.StoredFile
	for rows.Next() {
		file := &models.StoredFile{}
		err := rows.Scan(
			&file.ID,
			&file.Category,
			&file.Filename,
			&file.MimeType,
			&file.Size,
			&file.StoragePath,
			&file.CreatedAt,
		)
		if err != nil {
			return nil, translateError(err)
		}
		files = append(files, file)
	}

	return files, translateError(rows.Err())
}

// Delete removes a file record
func (r *FileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM files WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
