package handlers

import (
	"errors"
	"log"
	"net/http"

	"horizon/internal/identity"
	"horizon/internal/services"

	"github.com/gin-gonic/gin"
)

// apiError maps service sentinels to HTTP statuses. Unknown errors are
// logged and reported generically so internals never leak to clients.
func apiError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, identity.ErrMissingIdentity),
		errors.Is(err, services.ErrInvalidParent),
		errors.Is(err, services.ErrCommentEmpty),
		errors.Is(err, services.ErrCommentTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
	default:
		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
