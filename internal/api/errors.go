package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"projektchat/internal/domain"
)

// handleError maps domain errors onto HTTP status codes.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrProviderNotFound),
		errors.Is(err, domain.ErrProviderDisabled),
		errors.Is(err, domain.ErrProviderConfig),
		errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
