package handlers

import (
	"net/http"
	"strconv"

	"legaldata-backend/ingest"
	"legaldata-backend/models"
	"legaldata-backend/repository"
	"legaldata-backend/service"

	"github.com/gin-gonic/gin"
)

// AttorneyHandler handles HTTP requests for attorney profiles
type AttorneyHandler struct {
	attorneyService *service.AttorneyService
	maxUploadBytes  int64
}

// NewAttorneyHandler creates a new attorney handler
func NewAttorneyHandler(attorneyService *service.AttorneyService, maxUploadBytes int64) *AttorneyHandler {
	return &AttorneyHandler{
		attorneyService: attorneyService,
		maxUploadBytes:  maxUploadBytes,
	}
}

// CreateAttorney handles POST /api/v1/attorneys
func (h *AttorneyHandler) CreateAttorney(c *gin.Context) {
	var input models.AttorneyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	attorney, err := h.attorneyService.CreateAttorney(c.Request.Context(), input)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, attorney)
}

// GetAttorney handles GET /api/v1/attorneys/:id
func (h *AttorneyHandler) GetAttorney(c *gin.Context) {
	attorney, err := h.attorneyService.GetAttorney(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondOK(c, http.StatusOK, attorney)
}

// ListAttorneys handles GET /api/v1/attorneys
func (h *AttorneyHandler) ListAttorneys(c *gin.Context) {
	filter := repository.AttorneyFilter{
		PracticeArea: c.Query("practice_area"),
		Seniority:    c.Query("seniority"),
	}
	if v := c.Query("min_experience"); v != "" {
		minExp, err := strconv.Atoi(v)
		if err != nil || minExp < 0 {
			respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "min_experience must be a non-negative integer")
			return
		}
		filter.MinExperience = minExp
	}

	attorneys, err := h.attorneyService.ListAttorneys(c.Request.Context(), filter)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"attorneys": attorneys,
		"count":     len(attorneys),
	})
}

// UpdateAttorney handles PUT /api/v1/attorneys/:id
func (h *AttorneyHandler) UpdateAttorney(c *gin.Context) {
	var input models.AttorneyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	attorney, err := h.attorneyService.UpdateAttorney(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondOK(c, http.StatusOK, attorney)
}

// DeleteAttorney handles DELETE /api/v1/attorneys/:id
func (h *AttorneyHandler) DeleteAttorney(c *gin.Context) {
	id := c.Param("id")
	if err := h.attorneyService.DeleteAttorney(c.Request.Context(), id); err != nil {
		respondDomainError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"message": "attorney deleted",
		"id":      id,
	})
}

// BulkUploadAttorneys handles POST /api/v1/attorneys/bulk/excel. Rows that
// fail validation or carry a duplicate email are reported alongside the
// created IDs; one bad row never aborts the batch.
func (h *AttorneyHandler) BulkUploadAttorneys(c *gin.Context) {
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

	inputs, rowErrors, err := ingest.ParseAttorneyWorkbook(file)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_WORKBOOK", err.Error())
		return
	}

	result, err := h.attorneyService.BulkCreateAttorneys(c.Request.Context(), inputs)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"created_count": len(result.CreatedIDs),
		"created_ids":   result.CreatedIDs,
		"skipped":       result.Skipped,
		"errors":        rowErrors,
	})
}
