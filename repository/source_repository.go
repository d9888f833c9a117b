package repository

import (
	"context"
	"fmt"

	"legaldata-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SourceFilter holds the optional filters for listing public sources.
type SourceFilter struct {
	RiskArea         string
	Jurisdiction     string
	EnrichmentStatus string
}

// SourceRepository handles database operations for public data sources
type SourceRepository struct {
	db *pgxpool.Pool
}

// NewSourceRepository creates a new public source repository
func NewSourceRepository(db *pgxpool.Pool) *SourceRepository {
	return &SourceRepository{db: db}
}

const sourceColumns = `id, title, url, source, published_date, risk_area,
		jurisdiction, impact_level, summary, key_points, enrichment_status,
		enrichment_retry_count, created_at, updated_at, last_enriched_at`

func scanSource(row interface{ Scan(...interface{}) error }) (*models.PublicSource, error) {
	source := &models.PublicSource{}
	err := row.Scan(
		&source.ID,
		&source.Title,
		&source.URL,
		&source.Source,
		&source.PublishedDate,
		&source.RiskArea,
		&source.Jurisdiction,
		&source.ImpactLevel,
		&source.Summary,
		&source.KeyPoints,
		&source.EnrichmentStatus,
		&source.EnrichmentRetryCount,
		&source.CreatedAt,
		&source.UpdatedAt,
		&source.LastEnrichedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return source, nil
}

// Create inserts a new public source
func (r *SourceRepository) Create(ctx context.Context, source *models.PublicSource) error {
	query := `
		INSERT INTO public_sources (
			id, title, url, source, published_date, risk_area,
			jurisdiction, impact_level, summary, key_points,
			enrichment_status, enrichment_retry_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.Exec(
		ctx, query,
		source.ID,
		source.Title,
		source.URL,
		source.Source,
		source.PublishedDate,
		source.RiskArea,
		source.Jurisdiction,
		source.ImpactLevel,
		source.Summary,
		source.KeyPoints,
		source.EnrichmentStatus,
		source.EnrichmentRetryCount,
		source.CreatedAt,
		source.UpdatedAt,
	)

	return translateError(err)
}

// GetByID retrieves a public source by ID
func (r *SourceRepository) GetByID(ctx context.Context, id string) (*models.PublicSource, error) {
	query := `
		SELECT ` + sourceColumns + `
		FROM public_sources
		WHERE id = $1`

	return scanSource(r.db.QueryRow(ctx, query, id))
}

// List retrieves public sources matching the filter
func (r *SourceRepository) List(ctx context.Context, filter SourceFilter) ([]*models.PublicSource, error) {
	query := `
		SELECT ` + sourceColumns + `
		FROM public_sources`

	var args []interface{}
	var conditions []string
	argIndex := 1

	if filter.RiskArea != "" {
		conditions = append(conditions, fmt.Sprintf("risk_area = $%d", argIndex))
		args = append(args, filter.RiskArea)
		argIndex++
	}
	if filter.Jurisdiction != "" {
		conditions = append(conditions, fmt.Sprintf("jurisdiction = $%d", argIndex))
		args = append(args, filter.Jurisdiction)
		argIndex++
	}
	if filter.EnrichmentStatus != "" {
		conditions = append(conditions, fmt.Sprintf("enrichment_status = $%d", argIndex))
		args = append(args, filter.EnrichmentStatus)
		argIndex++
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var sources []*models.PublicSource
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}

	return sources, translateError(rows.Err())
}

// Update replaces the caller-mutable fields of a public source
func (r *SourceRepository) Update(ctx context.Context, source *models.PublicSource) error {
	query := `
		UPDATE public_sources SET
			title = $2,
			url = $3,
			source = $4,
			published_date = $5,
			risk_area = $6,
			jurisdiction = $7,
			impact_level = $8,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(
		ctx, query,
		source.ID,
		source.Title,
		source.URL,
		source.Source,
		source.PublishedDate,
		source.RiskArea,
		source.Jurisdiction,
		source.ImpactLevel,
	).Scan(&source.UpdatedAt)

	return translateError(err)
}

// BeginEnrichment moves a pending or failed source to in_progress. The
// transition is a conditional update so a status can never move backward;
// ErrConflict means the source was in neither eligible state (or is gone).
func (r *SourceRepository) BeginEnrichment(ctx context.Context, id string) error {
	query := `
		UPDATE public_sources SET
			enrichment_status = $2,
			updated_at = NOW()
		WHERE id = $1 AND enrichment_status IN ($3, $4)`

	tag, err := r.db.Exec(ctx, query, id,
		models.EnrichmentInProgress, models.EnrichmentPending, models.EnrichmentFailed)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

// CompleteEnrichment writes an enrichment result and moves the source to
// completed. The update is keyed on in_progress: a result arriving after
// the record was deleted (or its status changed) affects nothing, so the
// caller can discard it. ErrConflict signals that case.
func (r *SourceRepository) CompleteEnrichment(ctx context.Context, id string, result *models.EnrichmentResult) error {
	query := `
		UPDATE public_sources SET
			risk_area = $2,
			summary = $3,
			key_points = $4,
			jurisdiction = $5,
			impact_level = $6,
			source = $7,
			published_date = $8,
			enrichment_status = $9,
			updated_at = NOW(),
			last_enriched_at = NOW()
		WHERE id = $1 AND enrichment_status = $10`

	tag, err := r.db.Exec(ctx, query, id,
		result.RiskArea,
		result.Summary,
		result.KeyPoints,
		result.Jurisdiction,
		result.ImpactLevel,
		result.Source,
		result.PublishedDate,
		models.EnrichmentCompleted,
		models.EnrichmentInProgress,
	)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

// FailEnrichment moves an in_progress source to failed and bumps the retry
// counter.
func (r *SourceRepository) FailEnrichment(ctx context.Context, id string) error {
	query := `
		UPDATE public_sources SET
			enrichment_status = $2,
			enrichment_retry_count = enrichment_retry_count + 1,
			updated_at = NOW()
		WHERE id = $1 AND enrichment_status = $3`

	tag, err := r.db.Exec(ctx, query, id, models.EnrichmentFailed, models.EnrichmentInProgress)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

// Delete removes a public source. The jurisdiction partition value guards
// the delete.
func (r *SourceRepository) Delete(ctx context.Context, id string, jurisdiction string) error {
	query := `DELETE FROM public_sources WHERE id = $1 AND jurisdiction = $2`

	tag, err := r.db.Exec(ctx, query, id, jurisdiction)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
