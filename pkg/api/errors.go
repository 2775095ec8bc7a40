package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/correlator/pkg/config"
	"github.com/codeready-toolchain/correlator/pkg/job"
	"github.com/codeready-toolchain/correlator/pkg/storage"
)

// writeError maps engine and storage errors to HTTP responses.
func writeError(c *gin.Context, err error) {
	var cfgErr *config.Error
	switch {
	case errors.As(err, &cfgErr):
		c.JSON(http.StatusBadRequest, gin.H{"detail": cfgErr.Error()})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
	case errors.Is(err, job.ErrAuth):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "tracker authentication failed"})
	case errors.Is(err, job.ErrIncidentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	default:
		slog.Error("Unexpected API error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}
}
