package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"legaldata-backend/ingest"
	"legaldata-backend/models"
	"legaldata-backend/repository"
	"legaldata-backend/service"

	"github.com/gin-gonic/gin"
)

// SourceHandler handles HTTP requests for public data sources
type SourceHandler struct {
	sourceService     *service.SourceService
	enrichmentService *service.EnrichmentService
	maxUploadBytes    int64
	logger            *slog.Logger
}

// NewSourceHandler creates a new public source handler
func NewSourceHandler(sourceService *service.SourceService, enrichmentService *service.EnrichmentService, maxUploadBytes int64, logger *slog.Logger) *SourceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceHandler{
		sourceService:     sourceService,
		enrichmentService: enrichmentService,
		maxUploadBytes:    maxUploadBytes,
		logger:            logger,
	}
}

// CreateSource handles POST /api/v1/public-sources. Sources created
// without a summary are queued for enrichment.
func (h *SourceHandler) CreateSource(c *gin.Context) {
	var input models.SourceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	source, err := h.sourceService.CreateSource(c.Request.Context(), input)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	if source.EnrichmentStatus == models.EnrichmentPending {
		if err := h.enrichmentService.Enqueue(source.ID); err != nil {
			h.logger.Error("failed to enqueue enrichment", "id", source.ID, "err", err)
		}
	}

	respondOK(c, http.StatusCreated, source)
}

// GetSource handles GET /api/v1/public-sources/:id
func (h *SourceHandler) GetSource(c *gin.Context) {
	source, err := h.sourceService.GetSource(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondOK(c, http.StatusOK, source)
}

// ListSources handles GET /api/v1/public-sources
func (h *SourceHandler) ListSources(c *gin.Context) {
	filter := repository.SourceFilter{
		RiskArea:         c.Query("risk_area"),
		Jurisdiction:     c.Query("jurisdiction"),
		EnrichmentStatus: c.Query("enrichment_status"),
	}

	sources, err := h.sourceService.ListSources(c.Request.Context(), filter)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"sources": sources,
		"count":   len(sources),
	})
}

// UpdateSource handles PUT /api/v1/public-sources/:id
func (h *SourceHandler) UpdateSource(c *gin.Context) {
	var input models.SourceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	source, err := h.sourceService.UpdateSource(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondOK(c, http.StatusOK, source)
}

// RequestEnrichment handles PATCH /api/v1/public-sources/:id/enrich.
// Already-enriched sources and sources past the retry limit are rejected
// with a conflict.
func (h *SourceHandler) RequestEnrichment(c *gin.Context) {
	id := c.Param("id")
	if err := h.enrichmentService.RequestEnrichment(c.Request.Context(), id); err != nil {
		respondDomainError(c, err)
		return
	}

	respondOK(c, http.StatusAccepted, gin.H{
		"message": "enrichment queued",
		"id":      id,
	})
}

// DeleteSource handles DELETE /api/v1/public-sources/:id
func (h *SourceHandler) DeleteSource(c *gin.Context) {
	id := c.Param("id")
	if err := h.sourceService.DeleteSource(c.Request.Context(), id); err != nil {
		respondDomainError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"message": "source deleted",
		"id":      id,
	})
}

// BulkUploadSources handles POST /api/v1/public-sources/bulk/excel.
// Created rows without a summary are queued for enrichment.
func (h *SourceHandler) BulkUploadSources(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "An Excel file is required")
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		respondError(c, http.StatusBadRequest, "FILE_TOO_LARGE",
			"File size exceeds maximum of "+strconv.FormatInt(h.maxUploadBytes, 10)+" bytes")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "FILE_OPEN_ERROR", err.Error())
		return
	}
	defer file.Close()

	inputs, rowErrors, err := ingest.ParseSourceWorkbook(file)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_WORKBOOK", err.Error())
		return
	}

	createdIDs, pendingIDs, err := h.sourceService.BulkCreateSources(c.Request.Context(), inputs)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	for _, id := range pendingIDs {
		if err := h.enrichmentService.Enqueue(id); err != nil {
			h.logger.Error("failed to enqueue enrichment", "id", id, "err", err)
		}
	}

	respondOK(c, http.StatusOK, gin.H{
		"created_count": len(createdIDs),
		"created_ids":   createdIDs,
		"queued_count":  len(pendingIDs),
		"errors":        rowErrors,
	})
}
