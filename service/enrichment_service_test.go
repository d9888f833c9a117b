package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legaldata-backend/models"
	"legaldata-backend/repository"
)

// fakeEnrichmentRepo is an in-memory EnrichmentSourceRepository that
// records the status transitions applied to each source.
type fakeEnrichmentRepo struct {
	mu          sync.Mutex
	sources     map[string]*models.PublicSource
	transitions []models.EnrichmentStatus
}

func newFakeEnrichmentRepo(sources ...*models.PublicSource) *fakeEnrichmentRepo {
	r := &fakeEnrichmentRepo{sources: make(map[string]*models.PublicSource)}
	for _, s := range sources {
		r.sources[s.ID] = s
	}
	return r
}

func (r *fakeEnrichmentRepo) GetByID(ctx context.Context, id string) (*models.PublicSource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sources[id]
	if !ok {
		return nil, fmt.Errorf("%w: source %s", repository.ErrNotFound, id)
	}
	cp := *s
	return &cp, nil
}

func (r *fakeEnrichmentRepo) BeginEnrichment(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sources[id]
	if !ok {
		return repository.ErrConflict
	}
	if s.EnrichmentStatus != models.EnrichmentPending && s.EnrichmentStatus != models.EnrichmentFailed {
		return repository.ErrConflict
	}
	s.EnrichmentStatus = models.EnrichmentInProgress
	r.transitions = append(r.transitions, models.EnrichmentInProgress)
	return nil
}

func (r *fakeEnrichmentRepo) CompleteEnrichment(ctx context.Context, id string, result *models.EnrichmentResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sources[id]
	if !ok || s.EnrichmentStatus != models.EnrichmentInProgress {
		return repository.ErrConflict
	}
	s.EnrichmentStatus = models.EnrichmentCompleted
	s.Summary = &result.Summary
	s.KeyPoints = result.KeyPoints
	if result.RiskArea != "" {
		s.RiskArea = &result.RiskArea
	}
	s.Jurisdiction = result.Jurisdiction
	now := time.Now().UTC()
	s.LastEnrichedAt = &now
	r.transitions = append(r.transitions, models.EnrichmentCompleted)
	return nil
}

func (r *fakeEnrichmentRepo) FailEnrichment(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sources[id]
	if !ok || s.EnrichmentStatus != models.EnrichmentInProgress {
		return repository.ErrConflict
	}
	s.EnrichmentStatus = models.EnrichmentFailed
	s.EnrichmentRetryCount++
	r.transitions = append(r.transitions, models.EnrichmentFailed)
	return nil
}

func (r *fakeEnrichmentRepo) status(id string) models.EnrichmentStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sources[id].EnrichmentStatus
}

func (r *fakeEnrichmentRepo) delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sources, id)
}

// fakeSummarizer returns a canned result, an error, or runs a hook first.
type fakeSummarizer struct {
	mu     sync.Mutex
	result *models.EnrichmentResult
	err    error
	calls  int
	before func()
}

func (f *fakeSummarizer) Summarize(ctx context.Context, title, url, content string) (*models.EnrichmentResult, error) {
	f.mu.Lock()
	f.calls++
	hook := f.before
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeSummarizer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeFetcher struct {
	content string
	err     error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.content, f.err
}

func pendingSource() *models.PublicSource {
	return models.NewPublicSource(models.SourceInput{
		Title: "New data privacy ruling",
		URL:   "https://example.com/ruling",
	})
}

func enrichmentResult() *models.EnrichmentResult {
	return &models.EnrichmentResult{
		RiskArea:     "Data Privacy",
		Summary:      "A new ruling tightens processing requirements.",
		KeyPoints:    models.KeyPoints{"Consent rules tightened", "Fines increased"},
		Jurisdiction: "EU",
		ImpactLevel:  "High",
	}
}

func newTestEnrichmentService(t *testing.T, repo *fakeEnrichmentRepo, sum Summarizer, opts ...EnrichmentServiceOption) *EnrichmentService {
	t.Helper()

	base := []EnrichmentServiceOption{
		WithEnrichmentRepository(repo),
		WithSummarizer(sum),
		WithContentFetcher(&fakeFetcher{content: "ruling text"}),
		WithRetryBaseDelay(time.Millisecond),
	}
	svc, err := NewEnrichmentService(1, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func TestEnrichCompletesSource(t *testing.T) {
	source := pendingSource()
	repo := newFakeEnrichmentRepo(source)
	svc := newTestEnrichmentService(t, repo, &fakeSummarizer{result: enrichmentResult()})

	svc.enrich(context.Background(), source.ID)

	assert.Equal(t, models.EnrichmentCompleted, repo.status(source.ID))
	assert.Equal(t, []models.EnrichmentStatus{
		models.EnrichmentInProgress,
		models.EnrichmentCompleted,
	}, repo.transitions)

	stored, err := repo.GetByID(context.Background(), source.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Summary)
	assert.Equal(t, "EU", stored.Jurisdiction)
	assert.NotNil(t, stored.LastEnrichedAt)
}

func TestEnrichFailsAfterRetries(t *testing.T) {
	source := pendingSource()
	repo := newFakeEnrichmentRepo(source)
	sum := &fakeSummarizer{err: errors.New("model unavailable")}
	svc := newTestEnrichmentService(t, repo, sum, WithMaxRetries(3))

	svc.enrich(context.Background(), source.ID)

	assert.Equal(t, models.EnrichmentFailed, repo.status(source.ID))
	assert.Equal(t, 3, sum.callCount())

	stored, err := repo.GetByID(context.Background(), source.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.EnrichmentRetryCount)
}

func TestEnrichSkipsCompletedSource(t *testing.T) {
	source := pendingSource()
	source.EnrichmentStatus = models.EnrichmentCompleted
	repo := newFakeEnrichmentRepo(source)
	sum := &fakeSummarizer{result: enrichmentResult()}
	svc := newTestEnrichmentService(t, repo, sum)

	svc.enrich(context.Background(), source.ID)

	assert.Zero(t, sum.callCount())
	assert.Empty(t, repo.transitions)
}

func TestEnrichSkipsMissingSource(t *testing.T) {
	repo := newFakeEnrichmentRepo()
	sum := &fakeSummarizer{result: enrichmentResult()}
	svc := newTestEnrichmentService(t, repo, sum)

	svc.enrich(context.Background(), "NEWS-MISSING1")

	assert.Zero(t, sum.callCount())
}

func TestEnrichSkipsPastRetryLimit(t *testing.T) {
	source := pendingSource()
	source.EnrichmentStatus = models.EnrichmentFailed
	source.EnrichmentRetryCount = models.MaxEnrichmentRetries
	repo := newFakeEnrichmentRepo(source)
	sum := &fakeSummarizer{result: enrichmentResult()}
	svc := newTestEnrichmentService(t, repo, sum)

	svc.enrich(context.Background(), source.ID)

	assert.Zero(t, sum.callCount())
	assert.Equal(t, models.EnrichmentFailed, repo.status(source.ID))
}

func TestEnrichDiscardsResultWhenSourceDeleted(t *testing.T) {
	source := pendingSource()
	repo := newFakeEnrichmentRepo(source)
	sum := &fakeSummarizer{result: enrichmentResult()}
	// Delete the source while the summarizer is working.
	sum.before = func() { repo.delete(source.ID) }
	svc := newTestEnrichmentService(t, repo, sum)

	svc.enrich(context.Background(), source.ID)

	// Completion was a conditional write on a row that is gone; the
	// result was discarded and no completed status ever appeared.
	assert.Equal(t, []models.EnrichmentStatus{models.EnrichmentInProgress}, repo.transitions)
}

func TestEnrichToleratesFetchFailure(t *testing.T) {
	source := pendingSource()
	repo := newFakeEnrichmentRepo(source)
	sum := &fakeSummarizer{result: enrichmentResult()}
	svc := newTestEnrichmentService(t, repo, sum)
	svc.fetcher = &fakeFetcher{err: errors.New("connection refused")}

	svc.enrich(context.Background(), source.ID)

	assert.Equal(t, models.EnrichmentCompleted, repo.status(source.ID))
	assert.Equal(t, 1, sum.callCount())
}

func TestRequestEnrichment(t *testing.T) {
	t.Run("missing source is not found", func(t *testing.T) {
		svc := newTestEnrichmentService(t, newFakeEnrichmentRepo(), &fakeSummarizer{result: enrichmentResult()})

		err := svc.RequestEnrichment(context.Background(), "NEWS-MISSING1")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("already enriched conflicts", func(t *testing.T) {
		source := pendingSource()
		source.EnrichmentStatus = models.EnrichmentCompleted
		svc := newTestEnrichmentService(t, newFakeEnrichmentRepo(source), &fakeSummarizer{result: enrichmentResult()})

		err := svc.RequestEnrichment(context.Background(), source.ID)
		assert.ErrorIs(t, err, repository.ErrConflict)
	})

	t.Run("retry limit conflicts", func(t *testing.T) {
		source := pendingSource()
		source.EnrichmentStatus = models.EnrichmentFailed
		source.EnrichmentRetryCount = models.MaxEnrichmentRetries
		svc := newTestEnrichmentService(t, newFakeEnrichmentRepo(source), &fakeSummarizer{result: enrichmentResult()})

		err := svc.RequestEnrichment(context.Background(), source.ID)
		assert.ErrorIs(t, err, repository.ErrConflict)
	})
}

func TestEnqueueRunsOnWorkerPool(t *testing.T) {
	source := pendingSource()
	repo := newFakeEnrichmentRepo(source)

	done := make(chan struct{})
	sum := &fakeSummarizer{result: enrichmentResult()}
	sum.before = func() { close(done) }
	svc := newTestEnrichmentService(t, repo, sum)

	require.NoError(t, svc.Enqueue(source.ID))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("enrichment job never ran")
	}

	// Wait for the conditional completion write to land.
	deadline := time.After(5 * time.Second)
	for repo.status(source.ID) != models.EnrichmentCompleted {
		select {
		case <-deadline:
			t.Fatal("source never reached completed")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
