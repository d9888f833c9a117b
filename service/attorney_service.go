package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"legaldata-backend/models"
	"legaldata-backend/repository"
)

// AttorneyRepository is the store surface the attorney service needs.
type AttorneyRepository interface {
	Create(ctx context.Context, attorney *models.Attorney) error
	GetByID(ctx context.Context, id string) (*models.Attorney, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, filter repository.AttorneyFilter) ([]*models.Attorney, error)
	Update(ctx context.Context, attorney *models.Attorney) error
	Delete(ctx context.Context, id string, seniority models.Seniority) error
}

// AttorneyService handles business logic for attorney profiles
type AttorneyService struct {
	repo   AttorneyRepository
	logger *slog.Logger
}

// AttorneyServiceOption is a functional option for AttorneyService
type AttorneyServiceOption func(*AttorneyService)

// WithAttorneyRepository sets the attorney repository
func WithAttorneyRepository(repo AttorneyRepository) AttorneyServiceOption {
	return func(s *AttorneyService) {
		s.repo = repo
	}
}

// WithAttorneyLogger sets the logger
func WithAttorneyLogger(logger *slog.Logger) AttorneyServiceOption {
	return func(s *AttorneyService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewAttorneyService creates a new attorney service
func NewAttorneyService(opts ...AttorneyServiceOption) *AttorneyService {
	s := &AttorneyService{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAttorney validates the input, rejects duplicate emails, and
// persists a new attorney profile.
func (s *AttorneyService) CreateAttorney(ctx context.Context, input models.AttorneyInput) (*models.Attorney, error) {
	if s.repo == nil {
		return nil, errors.New("attorney repository not set")
	}

	if errs := input.Validate(); len(errs) > 0 {
		return nil, errs
	}

	email := input.Email
	if email == "" {
		email = models.GeneratedEmail(input.Name)
	}

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: email already exists: %s", repository.ErrConflict, email)
	}

	attorney := models.NewAttorney(input)
	if err := s.repo.Create(ctx, attorney); err != nil {
		return nil, err
	}

	return attorney, nil
}

// GetAttorney retrieves an attorney by ID
func (s *AttorneyService) GetAttorney(ctx context.Context, id string) (*models.Attorney, error) {
	if s.repo == nil {
		return nil, errors.New("attorney repository not set")
	}
	return s.repo.GetByID(ctx, id)
}

// ListAttorneys lists attorneys matching the filter
func (s *AttorneyService) ListAttorneys(ctx context.Context, filter repository.AttorneyFilter) ([]*models.Attorney, error) {
	if s.repo == nil {
		return nil, errors.New("attorney repository not set")
	}
	return s.repo.List(ctx, filter)
}

// UpdateAttorney validates the input and replaces the profile fields of an
// existing attorney. Identifier and creation timestamp are immutable.
func (s *AttorneyService) UpdateAttorney(ctx context.Context, id string, input models.AttorneyInput) (*models.Attorney, error) {
	if s.repo == nil {
		return nil, errors.New("attorney repository not set")
	}

	attorney, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if errs := input.Validate(); len(errs) > 0 {
		return nil, errs
	}

	attorney.Name = input.Name
	if input.Email != "" {
		attorney.Email = input.Email
	}
	attorney.Seniority = models.Seniority(input.Seniority)
	attorney.YearsOfExperience = input.YearsOfExperience
	attorney.PracticeAreas = input.PracticeAreas
	attorney.MajorCases = input.MajorCases
	if input.Jurisdictions != nil {
		attorney.Jurisdictions = input.Jurisdictions
	}
	if attorney.PracticeAreas == nil {
		attorney.PracticeAreas = make(models.PracticeAreas, 0)
	}
	if attorney.MajorCases == nil {
		attorney.MajorCases = make(models.MajorCases, 0)
	}

	if err := s.repo.Update(ctx, attorney); err != nil {
		return nil, err
	}

	return attorney, nil
}

// DeleteAttorney removes an attorney profile. The partition value for the
// delete comes from the stored record.
func (s *AttorneyService) DeleteAttorney(ctx context.Context, id string) error {
	if s.repo == nil {
		return errors.New("attorney repository not set")
	}

	attorney, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return s.repo.Delete(ctx, id, attorney.Seniority)
}

// SkippedAttorney reports one bulk row that was not created
type SkippedAttorney struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// BulkCreateResult summarizes a bulk attorney creation
type BulkCreateResult struct {
	CreatedIDs []string          `json:"created_ids"`
	Skipped    []SkippedAttorney `json:"skipped"`
}

// BulkCreateAttorneys creates attorneys from pre-validated workbook rows.
// Duplicate emails and per-row store failures are reported, not fatal.
func (s *AttorneyService) BulkCreateAttorneys(ctx context.Context, inputs []models.AttorneyInput) (*BulkCreateResult, error) {
	if s.repo == nil {
		return nil, errors.New("attorney repository not set")
	}

	result := &BulkCreateResult{
		CreatedIDs: []string{},
		Skipped:    []SkippedAttorney{},
	}

	for _, input := range inputs {
		email := input.Email
		if email == "" {
			email = models.GeneratedEmail(input.Name)
		}

		exists, err := s.repo.EmailExists(ctx, email)
		if err != nil {
			return nil, err
		}
		if exists {
			s.logger.Info("bulk create: skipping duplicate email", "name", input.Name, "email", email)
			result.Skipped = append(result.Skipped, SkippedAttorney{
				Name:   input.Name,
				Email:  email,
				Reason: "duplicate email",
			})
			continue
		}

		attorney := models.NewAttorney(input)
		if err := s.repo.Create(ctx, attorney); err != nil {
			if errors.Is(err, repository.ErrUnavailable) {
				return nil, err
			}
			s.logger.Warn("bulk create: failed to create attorney", "name", input.Name, "err", err)
			result.Skipped = append(result.Skipped, SkippedAttorney{
				Name:   input.Name,
				Email:  email,
				Reason: err.Error(),
			})
			continue
		}

		result.CreatedIDs = append(result.CreatedIDs, attorney.ID)
	}

	return result, nil
}
