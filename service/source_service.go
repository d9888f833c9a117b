package service

import (
	"context"
	"errors"
	"log/slog"

	"legaldata-backend/models"
	"legaldata-backend/repository"
)

// SourceRepository is the store surface the public-source service needs.
type SourceRepository interface {
	Create(ctx context.Context, source *models.PublicSource) error
	GetByID(ctx context.Context, id string) (*models.PublicSource, error)
	List(ctx context.Context, filter repository.SourceFilter) ([]*models.PublicSource, error)
	Update(ctx context.Context, source *models.PublicSource) error
	Delete(ctx context.Context, id string, jurisdiction string) error
}

// SourceService handles business logic for public data sources
type SourceService struct {
	repo   SourceRepository
	logger *slog.Logger
}

// SourceServiceOption is a functional option for SourceService
type SourceServiceOption func(*SourceService)

// WithSourceRepository sets the public source repository
func WithSourceRepository(repo SourceRepository) SourceServiceOption {
	return func(s *SourceService) {
		s.repo = repo
	}
}

// WithSourceLogger sets the logger
func WithSourceLogger(logger *slog.Logger) SourceServiceOption {
	return func(s *SourceService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSourceService creates a new public source service
func NewSourceService(opts ...SourceServiceOption) *SourceService {
	s := &SourceService{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSource validates the input and persists a new public source with
// enrichment pending (or completed, when a summary was supplied).
func (s *SourceService) CreateSource(ctx context.Context, input models.SourceInput) (*models.PublicSource, error) {
	if s.repo == nil {
		return nil, errors.New("source repository not set")
	}

	if errs := input.Validate(); len(errs) > 0 {
		return nil, errs
	}

	source := models.NewPublicSource(input)
	if err := s.repo.Create(ctx, source); err != nil {
		return nil, err
	}

	return source, nil
}

// GetSource retrieves a public source by ID
func (s *SourceService) GetSource(ctx context.Context, id string) (*models.PublicSource, error) {
	if s.repo == nil {
		return nil, errors.New("source repository not set")
	}
	return s.repo.GetByID(ctx, id)
}

// ListSources lists public sources matching the filter
func (s *SourceService) ListSources(ctx context.Context, filter repository.SourceFilter) ([]*models.PublicSource, error) {
	if s.repo == nil {
		return nil, errors.New("source repository not set")
	}
	return s.repo.List(ctx, filter)
}

// UpdateSource validates the input and replaces the caller-mutable fields
// of a public source. Enrichment-owned fields (summary, key points,
// status) are not touched here.
func (s *SourceService) UpdateSource(ctx context.Context, id string, input models.SourceInput) (*models.PublicSource, error) {
	if s.repo == nil {
		return nil, errors.New("source repository not set")
	}

	source, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if errs := input.Validate(); len(errs) > 0 {
		return nil, errs
	}

	source.Title = input.Title
	source.URL = input.URL
	if input.Source != "" {
		source.Source = &input.Source
	}
	if input.PublishedDate != "" {
		source.PublishedDate = &input.PublishedDate
	}
	if input.RiskArea != "" {
		source.RiskArea = &input.RiskArea
	}
	if input.Jurisdiction != "" {
		source.Jurisdiction = input.Jurisdiction
	}
	if input.ImpactLevel != "" {
		imp := models.ImpactLevel(input.ImpactLevel)
		source.ImpactLevel = &imp
	}

	if err := s.repo.Update(ctx, source); err != nil {
		return nil, err
	}

	return source, nil
}

// DeleteSource removes a public source. The partition value for the delete
// comes from the stored record.
func (s *SourceService) DeleteSource(ctx context.Context, id string) error {
	if s.repo == nil {
		return errors.New("source repository not set")
	}

	source, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return s.repo.Delete(ctx, id, source.Jurisdiction)
}

// BulkCreateSources creates public sources from pre-validated workbook
// rows and returns the IDs of sources still awaiting enrichment alongside
// all created IDs.
func (s *SourceService) BulkCreateSources(ctx context.Context, inputs []models.SourceInput) (createdIDs, pendingIDs []string, err error) {
	if s.repo == nil {
		return nil, nil, errors.New("source repository not set")
	}

	createdIDs = []string{}
	pendingIDs = []string{}

	for _, input := range inputs {
		source := models.NewPublicSource(input)
		if err := s.repo.Create(ctx, source); err != nil {
			if errors.Is(err, repository.ErrUnavailable) {
				return nil, nil, err
			}
			s.logger.Warn("bulk create: failed to create source", "title", input.Title, "err", err)
			continue
		}
		createdIDs = append(createdIDs, source.ID)
		if source.EnrichmentStatus == models.EnrichmentPending {
			pendingIDs = append(pendingIDs, source.ID)
		}
	}

	return createdIDs, pendingIDs, nil
}
