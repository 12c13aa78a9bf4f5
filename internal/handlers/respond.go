package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/keepon-app/keepon-ledger/internal/apperrors"
	"github.com/keepon-app/keepon-ledger/internal/dto"
	"github.com/keepon-app/keepon-ledger/internal/middleware"
)

// respondError translates service errors into the uniform error envelope.
// Validation maps to 400, missing resources to 404, authorization to 403 and
// state conflicts (idempotency replays, double reversals) to 409. Anything
// unrecognized is logged and reported as a 500 with the fallback message so
// internal detail never leaks to clients.
func respondError(c *gin.Context, err error, fallbackMsg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.Error(err.Error()))
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, dto.Error(err.Error()))
	case errors.Is(err, apperrors.ErrForbidden):
		logger.Warn("Forbidden", slog.String("error", err.Error()))
		c.JSON(http.StatusForbidden, dto.Error(err.Error()))
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Conflict", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, dto.Error(err.Error()))
	case errors.Is(err, apperrors.ErrUnauthorized):
		logger.Warn("Unauthorized", slog.String("error", err.Error()))
		c.JSON(http.StatusUnauthorized, dto.Error("Unauthorized"))
	default:
		logger.Error("Unexpected service error", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.Error(fallbackMsg))
	}
}

// requireUserID extracts the authenticated user or aborts with 401.
func requireUserID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, dto.Error("Unauthorized"))
		return "", false
	}
	return userID, true
}

// requireBusinessID extracts the business path parameter and, for API-key
// authenticated requests, enforces that the key's business scope matches.
func requireBusinessID(c *gin.Context) (string, bool) {
	businessID := c.Param("businessID")
	if businessID == "" {
		c.JSON(http.StatusBadRequest, dto.Error("businessID path parameter is required"))
		return "", false
	}
	if scopedID, scoped := middleware.GetAPIKeyBusinessID(c); scoped && scopedID != businessID {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("API key used outside its business scope",
			slog.String("key_business_id", scopedID), slog.String("requested_business_id", businessID))
		c.JSON(http.StatusForbidden, dto.Error("API key is not valid for this business"))
		return "", false
	}
	return businessID, true
}
