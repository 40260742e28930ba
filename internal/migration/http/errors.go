package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codearcheologist/codearch-backend/internal/logging"
	"github.com/codearcheologist/codearch-backend/internal/migration/domain"
)

// writeError maps pipeline errors to status codes. Unknown errors are logged
// and answered with a generic 500.
func writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
	case errors.Is(err, domain.ErrPreconditionFailed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logging.NewLogger(c.Request.Context()).LogError(op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
