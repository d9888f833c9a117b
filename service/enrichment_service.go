package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"

	"legaldata-backend/models"
	"legaldata-backend/repository"
)

// Summarizer produces enrichment data for a public source from its title,
// URL, and any page content that could be fetched.
type Summarizer interface {
	Summarize(ctx context.Context, title, url, content string) (*models.EnrichmentResult, error)
}

// ContentFetcher retrieves the raw text of a source URL. A fetch failure is
// not fatal to enrichment; the summarizer falls back to title and URL alone.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// EnrichmentSourceRepository is the store surface the enrichment pipeline
// needs. Status transitions are conditional updates; a conflict means the
// record moved underneath us (or was deleted) and the work is discarded.
type EnrichmentSourceRepository interface {
	GetByID(ctx context.Context, id string) (*models.PublicSource, error)
	BeginEnrichment(ctx context.Context, id string) error
	CompleteEnrichment(ctx context.Context, id string, result *models.EnrichmentResult) error
	FailEnrichment(ctx context.Context, id string) error
}

// EnrichmentService runs LLM enrichment jobs on a bounded worker pool.
type EnrichmentService struct {
	repo       EnrichmentSourceRepository
	summarizer Summarizer
	fetcher    ContentFetcher
	pool       *ants.Pool
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// EnrichmentServiceOption is a functional option for EnrichmentService
type EnrichmentServiceOption func(*EnrichmentService)

// WithEnrichmentRepository sets the source repository
func WithEnrichmentRepository(repo EnrichmentSourceRepository) EnrichmentServiceOption {
	return func(s *EnrichmentService) {
		s.repo = repo
	}
}

// WithSummarizer sets the summarizer
func WithSummarizer(sum Summarizer) EnrichmentServiceOption {
	return func(s *EnrichmentService) {
		s.summarizer = sum
	}
}

// WithContentFetcher sets the content fetcher
func WithContentFetcher(f ContentFetcher) EnrichmentServiceOption {
	return func(s *EnrichmentService) {
		s.fetcher = f
	}
}

// WithMaxRetries sets how many attempts the pipeline makes per job
func WithMaxRetries(n int) EnrichmentServiceOption {
	return func(s *EnrichmentService) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

// WithRetryBaseDelay sets the initial backoff delay between attempts
func WithRetryBaseDelay(d time.Duration) EnrichmentServiceOption {
	return func(s *EnrichmentService) {
		if d > 0 {
			s.baseDelay = d
		}
	}
}

// WithEnrichmentLogger sets the logger
func WithEnrichmentLogger(logger *slog.Logger) EnrichmentServiceOption {
	return func(s *EnrichmentService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewEnrichmentService creates the service and its worker pool. workers
// bounds how many enrichment jobs run concurrently.
func NewEnrichmentService(workers int, opts ...EnrichmentServiceOption) (*EnrichmentService, error) {
	if workers <= 0 {
		workers = 1
	}

	s := &EnrichmentService{
		maxRetries: models.MaxEnrichmentRetries,
		baseDelay:  2 * time.Second,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	pool, err := ants.NewPool(workers, ants.WithNonblocking(false))
	if err != nil {
		return nil, fmt.Errorf("failed to create enrichment pool: %w", err)
	}
	s.pool = pool

	return s, nil
}

// Close releases the worker pool. Queued jobs that have not started are
// dropped; they stay pending and can be re-enqueued later.
func (s *EnrichmentService) Close() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// Enqueue schedules enrichment for a source. Submission blocks only when
// the pool's task queue is saturated; the enrichment itself runs
// asynchronously.
func (s *EnrichmentService) Enqueue(id string) error {
	if s.pool == nil {
		return errors.New("enrichment pool not initialized")
	}
	return s.pool.Submit(func() {
		s.enrich(context.Background(), id)
	})
}

// RequestEnrichment validates that a source is eligible for (re-)enrichment
// and enqueues it. Completed sources and sources past the retry limit are
// rejected before any work is scheduled.
func (s *EnrichmentService) RequestEnrichment(ctx context.Context, id string) error {
	source, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if source.EnrichmentStatus == models.EnrichmentCompleted {
		return fmt.Errorf("%w: source %s is already enriched", repository.ErrConflict, id)
	}
	if source.EnrichmentStatus == models.EnrichmentInProgress {
		return fmt.Errorf("%w: enrichment for source %s is already running", repository.ErrConflict, id)
	}
	if source.EnrichmentRetryCount >= s.maxRetries {
		return fmt.Errorf("%w: source %s exceeded %d enrichment attempts", repository.ErrConflict, id, s.maxRetries)
	}

	return s.Enqueue(id)
}

func (s *EnrichmentService) enrich(ctx context.Context, id string) {
	source, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Info("enrichment skipped, source no longer exists", "id", id)
			return
		}
		s.logger.Error("enrichment: failed to load source", "id", id, "err", err)
		return
	}

	if source.EnrichmentStatus == models.EnrichmentCompleted {
		s.logger.Info("enrichment skipped, source already enriched", "id", id)
		return
	}
	if source.EnrichmentRetryCount >= s.maxRetries {
		s.logger.Warn("enrichment skipped, retry limit reached", "id", id, "retries", source.EnrichmentRetryCount)
		return
	}

	if err := s.repo.BeginEnrichment(ctx, id); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.logger.Info("enrichment skipped, source status changed", "id", id)
			return
		}
		s.logger.Error("enrichment: failed to mark in progress", "id", id, "err", err)
		return
	}

	content := s.fetchContent(ctx, source)

	var result *models.EnrichmentResult
	backoff := s.baseDelay
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		result, err = s.summarizer.Summarize(ctx, source.Title, source.URL, content)
		if err == nil {
			break
		}
		s.logger.Warn("enrichment attempt failed", "id", id, "attempt", attempt, "err", err)
		if attempt < s.maxRetries {
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	if err != nil {
		s.logger.Error("enrichment failed after retries", "id", id, "err", err)
		if failErr := s.repo.FailEnrichment(ctx, id); failErr != nil {
			s.logger.Error("enrichment: failed to record failure", "id", id, "err", failErr)
		}
		return
	}

	if err := s.repo.CompleteEnrichment(ctx, id, result); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Source was deleted or its status changed while we worked.
			// The result is discarded.
			s.logger.Info("enrichment result discarded", "id", id)
			return
		}
		s.logger.Error("enrichment: failed to store result", "id", id, "err", err)
		return
	}

	s.logger.Info("enrichment completed", "id", id)
}

func (s *EnrichmentService) fetchContent(ctx context.Context, source *models.PublicSource) string {
	if s.fetcher == nil {
		return ""
	}
	content, err := s.fetcher.Fetch(ctx, source.URL)
	if err != nil {
		s.logger.Warn("could not fetch source content, enriching from title only", "id", source.ID, "url", source.URL, "err", err)
		return ""
	}
	return content
}
