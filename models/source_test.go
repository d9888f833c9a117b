package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceInputValidate(t *testing.T) {
	t.Run("valid input passes", func(t *testing.T) {
		input := SourceInput{Title: "New privacy ruling", URL: "https://example.com/ruling"}
		assert.Empty(t, input.Validate())
	})

	t.Run("missing title is rejected", func(t *testing.T) {
		input := SourceInput{Title: "  ", URL: "https://example.com"}
		errs := input.Validate()
		require.Len(t, errs, 1)
		assert.Equal(t, "title", errs[0].Field)
	})

	t.Run("title over limit is rejected", func(t *testing.T) {
		input := SourceInput{Title: strings.Repeat("x", MaxTitleLength+1), URL: "https://example.com"}
		errs := input.Validate()
		require.Len(t, errs, 1)
		assert.Equal(t, "title", errs[0].Field)
	})

	t.Run("non-http URL is rejected", func(t *testing.T) {
		input := SourceInput{Title: "Ruling", URL: "ftp://example.com/file"}
		errs := input.Validate()
		require.Len(t, errs, 1)
		assert.Equal(t, "url", errs[0].Field)
	})

	t.Run("impact level is normalized", func(t *testing.T) {
		input := SourceInput{Title: "Ruling", URL: "http://example.com", ImpactLevel: "high"}
		require.Empty(t, input.Validate())
		assert.Equal(t, string(ImpactHigh), input.ImpactLevel)
	})

	t.Run("unknown impact level is rejected", func(t *testing.T) {
		input := SourceInput{Title: "Ruling", URL: "http://example.com", ImpactLevel: "Severe"}
		errs := input.Validate()
		require.Len(t, errs, 1)
		assert.Equal(t, "impact_level", errs[0].Field)
	})
}

func TestNewPublicSource(t *testing.T) {
	t.Run("starts pending without summary", func(t *testing.T) {
		source := NewPublicSource(SourceInput{Title: "Ruling", URL: "https://example.com"})

		assert.True(t, strings.HasPrefix(source.ID, "NEWS-"))
		assert.Len(t, source.ID, 13)
		assert.Equal(t, EnrichmentPending, source.EnrichmentStatus)
		assert.Equal(t, DefaultJurisdiction, source.Jurisdiction)
		assert.Nil(t, source.Summary)
		assert.NotNil(t, source.KeyPoints)
	})

	t.Run("stored completed when summary supplied", func(t *testing.T) {
		source := NewPublicSource(SourceInput{
			Title:        "Ruling",
			URL:          "https://example.com",
			Summary:      "Already summarized elsewhere.",
			Jurisdiction: "California",
		})

		assert.Equal(t, EnrichmentCompleted, source.EnrichmentStatus)
		require.NotNil(t, source.Summary)
		assert.Equal(t, "Already summarized elsewhere.", *source.Summary)
		assert.Equal(t, "California", source.Jurisdiction)
	})
}
