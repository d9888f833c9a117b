package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"legaldata-backend/models"
)

func TestExtractJSON(t *testing.T) {
	t.Run("plain JSON passes through", func(t *testing.T) {
		assert.Equal(t, `{"a":1}`, extractJSON(`{"a":1}`))
	})

	t.Run("strips fenced block", func(t *testing.T) {
		in := "```json\n{\"a\":1}\n```"
		assert.Equal(t, `{"a":1}`, extractJSON(in))
	})

	t.Run("strips bare fence", func(t *testing.T) {
		in := "```\n{\"a\":1}\n```"
		assert.Equal(t, `{"a":1}`, extractJSON(in))
	})
}

func TestNormalizeResult(t *testing.T) {
	t.Run("impact normalized case-insensitively", func(t *testing.T) {
		r := &models.EnrichmentResult{ImpactLevel: "high", Jurisdiction: "EU"}
		normalizeResult(r)
		assert.Equal(t, string(models.ImpactHigh), r.ImpactLevel)
	})

	t.Run("unknown impact falls back to medium", func(t *testing.T) {
		r := &models.EnrichmentResult{ImpactLevel: "Catastrophic"}
		normalizeResult(r)
		assert.Equal(t, string(models.ImpactMedium), r.ImpactLevel)
	})

	t.Run("blank jurisdiction defaults", func(t *testing.T) {
		r := &models.EnrichmentResult{ImpactLevel: "Low", Jurisdiction: "  "}
		normalizeResult(r)
		assert.Equal(t, models.DefaultJurisdiction, r.Jurisdiction)
	})

	t.Run("nil key points become empty", func(t *testing.T) {
		r := &models.EnrichmentResult{ImpactLevel: "Low", Jurisdiction: "EU"}
		normalizeResult(r)
		assert.NotNil(t, r.KeyPoints)
	})
}
