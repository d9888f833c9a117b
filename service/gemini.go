package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"legaldata-backend/models"
)

// maxContentChars caps how much fetched page content goes into the prompt.
const maxContentChars = 5000

var ErrEmptyResponse = errors.New("model returned no content")

// GeminiSummarizer enriches public sources with the Gemini API.
type GeminiSummarizer struct {
	client    *genai.Client
	modelName string
}

// NewGeminiSummarizer creates a summarizer backed by the given client and
// model name.
func NewGeminiSummarizer(client *genai.Client, modelName string) *GeminiSummarizer {
	return &GeminiSummarizer{
		client:    client,
		modelName: modelName,
	}
}

// Summarize asks the model for a structured enrichment of a source. The
// content argument may be empty when the page could not be fetched.
func (g *GeminiSummarizer) Summarize(ctx context.Context, title, url, content string) (*models.EnrichmentResult, error) {
	if g.client == nil {
		return nil, errors.New("gemini client not set")
	}

	if len(content) > maxContentChars {
		content = content[:maxContentChars] + "..."
	}

	prompt := buildEnrichmentPrompt(title, url, content)

	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(0.2)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	text := collectText(resp)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	var result models.EnrichmentResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		// Some responses still arrive wrapped in markdown fences.
		text = extractJSON(text)
		if err := json.Unmarshal([]byte(text), &result); err != nil {
			return nil, fmt.Errorf("failed to parse enrichment response as JSON: %w", err)
		}
	}

	normalizeResult(&result)
	return &result, nil
}

func buildEnrichmentPrompt(title, url, content string) string {
	var b strings.Builder
	b.WriteString(`Analyze the following legal news item and respond ONLY with a valid JSON object (no markdown, no code blocks) with this structure:
{
  "risk_area": "one of: Regulatory Compliance, Litigation, Data Privacy, Employment Law, Intellectual Property, Corporate Governance, Other",
  "summary": "A concise 2-3 sentence summary of the item and its relevance to legal practice",
  "key_points": ["3 to 5 short key points"],
  "jurisdiction": "The jurisdiction this item concerns, or Unknown",
  "impact_level": "one of: Low, Medium, High",
  "source": "The publishing organization, if identifiable",
  "published_date": "Publication date in YYYY-MM-DD format, or empty string"
}

Title: `)
	b.WriteString(title)
	b.WriteString("\nURL: ")
	b.WriteString(url)
	if content != "" {
		b.WriteString("\n\nPage content:\n")
		b.WriteString(content)
	}
	return b.String()
}

func collectText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// normalizeResult coerces model output into the stored vocabulary.
func normalizeResult(r *models.EnrichmentResult) {
	if imp, ok := models.ParseImpact(r.ImpactLevel); ok {
		r.ImpactLevel = string(imp)
	} else {
		r.ImpactLevel = string(models.ImpactMedium)
	}
	if strings.TrimSpace(r.Jurisdiction) == "" {
		r.Jurisdiction = models.DefaultJurisdiction
	}
	if r.KeyPoints == nil {
		r.KeyPoints = make(models.KeyPoints, 0)
	}
}

// extractJSON strips a markdown code fence from model output, if present.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	if idx := strings.Index(content, "\n"); idx >= 0 {
		content = content[idx+1:]
	}
	if idx := strings.LastIndex(content, "```"); idx >= 0 {
		content = content[:idx]
	}
	return strings.TrimSpace(content)
}
