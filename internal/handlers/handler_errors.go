package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/karobooks/ledger_engine/internal/apperrors"
)

// respondServiceError maps a service error onto an HTTP status. The posting
// taxonomy (no rule, unknown account, missing field, bad evaluation) is the
// caller's fault but only detectable against stored state, so it reports as
// 422 rather than 400.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, fallbackMessage string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Conflicting request", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNoMatchingRule),
		errors.Is(err, apperrors.ErrUnknownAccountCode),
		errors.Is(err, apperrors.ErrMissingRequiredField),
		errors.Is(err, apperrors.ErrAmountEvaluation),
		errors.Is(err, apperrors.ErrInvalidAccountReference):
		logger.Warn("Event rejected by posting rules", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		logger.Error(fallbackMessage, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallbackMessage})
	}
}
