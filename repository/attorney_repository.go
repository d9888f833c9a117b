package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"legaldata-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AttorneyFilter holds the optional filters for listing attorneys.
type AttorneyFilter struct {
	PracticeArea  string
	Seniority     string
	MinExperience int
}

// AttorneyRepository handles database operations for attorney profiles
type AttorneyRepository struct {
	db *pgxpool.Pool
}

// NewAttorneyRepository creates a new attorney repository
func NewAttorneyRepository(db *pgxpool.Pool) *AttorneyRepository {
	return &AttorneyRepository{db: db}
}

const attorneyColumns = `id, name, email, seniority, years_of_experience,
		practice_areas, major_cases, jurisdictions, created_at, updated_at`

// Create inserts a new attorney profile
func (r *AttorneyRepository) Create(ctx context.Context, attorney *models.Attorney) error {
	query := `
		INSERT INTO attorneys (
			id, name, email, seniority, years_of_experience,
			practice_areas, major_cases, jurisdictions, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(
		ctx, query,
		attorney.ID,
		attorney.Name,
		attorney.Email,
		attorney.Seniority,
		attorney.YearsOfExperience,
		attorney.PracticeAreas,
		attorney.MajorCases,
		attorney.Jurisdictions,
		attorney.CreatedAt,
		attorney.UpdatedAt,
	)

	return translateError(err)
}

// GetByID retrieves an attorney by ID
func (r *AttorneyRepository) GetByID(ctx context.Context, id string) (*models.Attorney, error) {
	attorney := &models.Attorney{}
	query := `
		SELECT ` + attorneyColumns + `
		FROM attorneys
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&attorney.ID,
		&attorney.Name,
		&attorney.Email,
		&attorney.Seniority,
		&attorney.YearsOfExperience,
		&attorney.PracticeAreas,
		&attorney.MajorCases,
		&attorney.Jurisdictions,
		&attorney.CreatedAt,
		&attorney.UpdatedAt,
	)

	if err != nil {
		return nil, translateError(err)
	}

	return attorney, nil
}

// EmailExists reports whether an attorney with the given email exists
func (r *AttorneyRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM attorneys WHERE email = $1)`

	if err := r.db.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, translateError(err)
	}
	return exists, nil
}

// List retrieves attorneys matching the filter
func (r *AttorneyRepository) List(ctx context.Context, filter AttorneyFilter) ([]*models.Attorney, error) {
	query := `
		SELECT ` + attorneyColumns + `
		FROM attorneys`

	var args []interface{}
	var conditions []string
	argIndex := 1

	if filter.PracticeArea != "" {
		match, err := json.Marshal([]map[string]string{{"area": filter.PracticeArea}})
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, fmt.Sprintf("practice_areas @> $%d::jsonb", argIndex))
		args = append(args, string(match))
		argIndex++
	}
	if filter.Seniority != "" {
		conditions = append(conditions, fmt.Sprintf("seniority = $%d", argIndex))
		args = append(args, filter.Seniority)
		argIndex++
	}
	if filter.MinExperience > 0 {
		conditions = append(conditions, fmt.Sprintf("years_of_experience >= $%d", argIndex))
		args = append(args, filter.MinExperience)
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

	var attorneys []*models.Attorney
	for rows.Next() {
		attorney := &models.Attorney{}
		err := rows.Scan(
			&attorney.ID,
			&attorney.Name,
			&attorney.Email,
			&attorney.Seniority,
			&attorney.YearsOfExperience,
			&attorney.PracticeAreas,
			&attorney.MajorCases,
			&attorney.Jurisdictions,
			&attorney.CreatedAt,
			&attorney.UpdatedAt,
		)
		if err != nil {
			return nil, translateError(err)
		}
		attorneys = append(attorneys, attorney)
	}

	return attorneys, translateError(rows.Err())
}

// Update replaces the mutable fields of an attorney profile
func (r *AttorneyRepository) Update(ctx context.Context, attorney *models.Attorney) error {
	query := `
		UPDATE attorneys SET
			name = $2,
			email = $3,
			seniority = $4,
			years_of_experience = $5,
			practice_areas = $6,
			major_cases = $7,
			jurisdictions = $8,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(
		ctx, query,
		attorney.ID,
		attorney.Name,
		attorney.Email,
		attorney.Seniority,
		attorney.YearsOfExperience,
		attorney.PracticeAreas,
		attorney.MajorCases,
		attorney.Jurisdictions,
	).Scan(&attorney.UpdatedAt)

	return translateError(err)
}

// Delete removes an attorney. The seniority partition value guards the
// delete the same way the partition key did in the document store.
func (r *AttorneyRepository) Delete(ctx context.Context, id string, seniority models.Seniority) error {
	query := `DELETE FROM attorneys WHERE id = $1 AND seniority = $2`

	tag, err := r.db.Exec(ctx, query, id, seniority)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
