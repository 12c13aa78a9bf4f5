package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/keepon-app/keepon-ledger/internal/core/ports/services"
	"github.com/keepon-app/keepon-ledger/internal/dto"
	"github.com/keepon-app/keepon-ledger/internal/middleware"
)

// apiKeyHandler handles HTTP requests for service API keys.
type apiKeyHandler struct {
	apiKeyService portssvc.APIKeySvc
}

// newAPIKeyHandler creates a new apiKeyHandler.
func newAPIKeyHandler(apiKeyService portssvc.APIKeySvc) *apiKeyHandler {
	return &apiKeyHandler{
		apiKeyService: apiKeyService,
	}
}

// registerAPIKeyRoutes registers API key routes nested under a business.
func registerAPIKeyRoutes(group *gin.RouterGroup, apiKeyService portssvc.APIKeySvc) {
	h := newAPIKeyHandler(apiKeyService)

	keys := group.Group("/apikeys")
	{
		keys.POST("", h.createKey)
		keys.GET("", h.listKeys)
		keys.DELETE("/:keyID", h.revokeKey)
	}
}

// createKey godoc
// @Summary Create an API key
// @Description Generates a new API key for machine clients; the secret is returned exactly once
// @Tags apikeys
// @Accept json
// @Produce json
// @Param businessID path string true "Business ID"
// @Param key body dto.CreateAPIKeyRequest true "Key details"
// @Success 201 {object} dto.Envelope{data=dto.CreateAPIKeyResponse}
// @Failure 403 {object} dto.Envelope "Forbidden"
// @Security BearerAuth
// @Router /businesses/{businessID}/apikeys [post]
func (h *apiKeyHandler) createKey(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAPIKey", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.Error("Invalid request format: "+err.Error()))
		return
	}

	var expiresIn *time.Duration
	if req.ExpiresIn != nil {
		d := time.Duration(*req.ExpiresIn) * time.Second
		expiresIn = &d
	}

	secret, key, err := h.apiKeyService.CreateKey(c.Request.Context(), businessID, req.Name, userID, expiresIn)
	if err != nil {
		respondError(c, err, "Failed to create API key")
		return
	}

	logger.Info("API key created", slog.String("key_id", key.KeyID), slog.String("business_id", businessID))
	c.JSON(http.StatusCreated, dto.Success(dto.CreateAPIKeyResponse{
		APIKeyResponse: dto.ToAPIKeyResponse(key),
		Secret:         secret,
	}))
}

// listKeys godoc
// @Summary List API keys
// @Description Retrieves all API keys of a business; secrets are never returned
// @Tags apikeys
// @Produce json
// @Param businessID path string true "Business ID"
// @Success 200 {object} dto.Envelope{data=[]dto.APIKeyResponse}
// @Failure 403 {object} dto.Envelope "Forbidden"
// @Security BearerAuth
// @Router /businesses/{businessID}/apikeys [get]
func (h *apiKeyHandler) listKeys(c *gin.Context) {
	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	keys, err := h.apiKeyService.ListKeys(c.Request.Context(), businessID, userID)
	if err != nil {
		respondError(c, err, "Failed to list API keys")
		return
	}

	c.JSON(http.StatusOK, dto.Success(dto.ToAPIKeyResponses(keys)))
}

// revokeKey godoc
// @Summary Revoke an API key
// @Description Revokes an API key so it can no longer authenticate requests
// @Tags apikeys
// @Produce json
// @Param businessID path string true "Business ID"
// @Param keyID path string true "Key ID"
// @Success 200 {object} dto.Envelope
// @Failure 404 {object} dto.Envelope "Key not found"
// @Failure 409 {object} dto.Envelope "Key already revoked"
// @Security BearerAuth
// @Router /businesses/{businessID}/apikeys/{keyID} [delete]
func (h *apiKeyHandler) revokeKey(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	keyID := c.Param("keyID")

	if err := h.apiKeyService.RevokeKey(c.Request.Context(), businessID, keyID, userID); err != nil {
		respondError(c, err, "Failed to revoke API key")
		return
	}

	logger.Info("API key revoked", slog.String("key_id", keyID), slog.String("business_id", businessID))
	c.JSON(http.StatusOK, dto.SuccessWithMessage("API key revoked", nil))
}
