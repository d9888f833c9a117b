package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EnrichmentStatus represents the lifecycle of background enrichment.
// Transitions: pending -> in_progress -> {completed, failed}. A failed
// source may re-enter in_progress for a bounded retry; no status ever
// moves back to pending.
type EnrichmentStatus string

const (
	EnrichmentPending    EnrichmentStatus = "pending"
	EnrichmentInProgress EnrichmentStatus = "in_progress"
	EnrichmentCompleted  EnrichmentStatus = "completed"
	EnrichmentFailed     EnrichmentStatus = "failed"
)

const (
	MaxTitleLength = 500
	// DefaultJurisdiction is used until enrichment determines one.
	DefaultJurisdiction = "Unknown"
	// MaxEnrichmentRetries bounds how many times enrichment is attempted
	// for a single source.
	MaxEnrichmentRetries = 3
)

var urlPattern = regexp.MustCompile(`^https?://.+`)

// KeyPoints is a list of enrichment-extracted key points stored as JSONB
type KeyPoints []string

// Value implements driver.Valuer for JSONB
func (k KeyPoints) Value() (driver.Value, error) {
	return json.Marshal(k)
}

// Scan implements sql.Scanner for JSONB
func (k *KeyPoints) Scan(value interface{}) error {
	if value == nil {
		*k = make(KeyPoints, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*k = make(KeyPoints, 0)
		return nil
	}

	if len(bytes) == 0 {
		*k = make(KeyPoints, 0)
		return nil
	}

	return json.Unmarshal(bytes, k)
}

// PublicSource represents a stored public legal data source. Jurisdiction
// doubles as the partition column for the public_sources table.
type PublicSource struct {
	ID                   string           `json:"news_id"`
	Title                string           `json:"title"`
	URL                  string           `json:"url"`
	Source               *string          `json:"source"`
	PublishedDate        *string          `json:"published_date"`
	RiskArea             *string          `json:"risk_area"`
	Jurisdiction         string           `json:"jurisdiction"`
	ImpactLevel          *ImpactLevel     `json:"impact_level"`
	Summary              *string          `json:"summary"`
	KeyPoints            KeyPoints        `json:"key_points"`
	EnrichmentStatus     EnrichmentStatus `json:"enrichment_status"`
	EnrichmentRetryCount int              `json:"enrichment_retry_count"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
	LastEnrichedAt       *time.Time       `json:"last_enriched_at,omitempty"`
}

// SourceInput holds the fields a caller supplies when creating a public
// source. Only title and URL are required; the rest is filled in by
// enrichment, or supplied up front by a workbook row.
type SourceInput struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Source        string `json:"source"`
	PublishedDate string `json:"published_date"`
	RiskArea      string `json:"risk_area"`
	Jurisdiction  string `json:"jurisdiction"`
	ImpactLevel   string `json:"impact_level"`
	Summary       string `json:"summary"`
}

// Validate checks the input. Impact level, when supplied, is normalized.
func (in *SourceInput) Validate() ValidationErrors {
	var errs ValidationErrors

	title := strings.TrimSpace(in.Title)
	if title == "" {
		errs.Add("title", "title is required")
	} else if len(title) > MaxTitleLength {
		errs.Add("title", fmt.Sprintf("title exceeds %d characters", MaxTitleLength))
	}
	in.Title = title

	url := strings.TrimSpace(in.URL)
	if !urlPattern.MatchString(url) {
		errs.Add("url", "URL must start with http:// or https://")
	}
	in.URL = url

	if in.ImpactLevel != "" {
		if imp, ok := ParseImpact(in.ImpactLevel); ok {
			in.ImpactLevel = string(imp)
		} else {
			errs.Add("impact_level", "impact level must be one of: Low, Medium, High")
		}
	}

	return errs
}

// NewSourceID generates a source identifier of the form NEWS-XXXXXXXX.
func NewSourceID() string {
	return "NEWS-" + strings.ToUpper(uuid.New().String()[:8])
}

// NewPublicSource maps a validated input to a stored source. Rows that
// already carry a summary (bulk seeding) are stored completed; everything
// else starts pending.
func NewPublicSource(in SourceInput) *PublicSource {
	now := time.Now().UTC()

	s := &PublicSource{
		ID:               NewSourceID(),
		Title:            in.Title,
		URL:              in.URL,
		Jurisdiction:     DefaultJurisdiction,
		KeyPoints:        make(KeyPoints, 0),
		EnrichmentStatus: EnrichmentPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if in.Jurisdiction != "" {
		s.Jurisdiction = in.Jurisdiction
	}
	if in.Source != "" {
		s.Source = &in.Source
	}
	if in.PublishedDate != "" {
		s.PublishedDate = &in.PublishedDate
	}
	if in.RiskArea != "" {
		s.RiskArea = &in.RiskArea
	}
	if in.ImpactLevel != "" {
		imp := ImpactLevel(in.ImpactLevel)
		s.ImpactLevel = &imp
	}
	if in.Summary != "" {
		s.Summary = &in.Summary
		s.EnrichmentStatus = EnrichmentCompleted
	}

	return s
}

// EnrichmentResult carries the fields written back by a completed
// enrichment run.
type EnrichmentResult struct {
	RiskArea      string    `json:"risk_area"`
	Summary       string    `json:"summary"`
	KeyPoints     KeyPoints `json:"key_points"`
	Jurisdiction  string    `json:"jurisdiction"`
	ImpactLevel   string    `json:"impact_level"`
	Source        string    `json:"source"`
	PublishedDate string    `json:"published_date"`
}
