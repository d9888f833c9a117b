package handlers

import (
	"errors"
	"net/http"

	"legaldata-backend/models"
	"legaldata-backend/repository"

	"github.com/gin-gonic/gin"
)

// respondOK writes the success envelope
func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondError writes the error envelope with a given status and code
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondDomainError maps service and repository errors onto HTTP status
// codes: validation errors become 422, missing records 404, conflicting
// writes 409, and store outages 503.
func respondDomainError(c *gin.Context, err error) {
	var verrs models.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": verrs.Error(),
				"details": verrs,
			},
		})
	case errors.Is(err, repository.ErrNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, repository.ErrConflict):
		respondError(c, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, repository.ErrUnavailable):
		respondError(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}
