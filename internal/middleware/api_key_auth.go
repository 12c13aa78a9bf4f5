package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/keepon-app/keepon-ledger/internal/core/ports/services"
	"github.com/keepon-app/keepon-ledger/internal/dto"
)

// apiKeyHeader carries machine-client credentials in the form keyID.secret.
const apiKeyHeader = "X-API-Key"

// businessIDKey stores the business an API key is scoped to.
const businessIDKey = contextKey("apiKeyBusinessID")

// APIKeyAuthMiddleware authenticates requests carrying an X-API-Key header.
// On success the request proceeds as the key's creator, scoped to the key's
// business; requests without the header fall through to JWT auth.
func APIKeyAuthMiddleware(apiKeySvc portssvc.APIKeySvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		keyString := c.GetHeader(apiKeyHeader)
		if keyString == "" {
			c.Next()
			return
		}

		logger := GetLoggerFromCtx(c.Request.Context())

		key, err := apiKeySvc.ValidateKey(c.Request.Context(), keyString)
		if err != nil {
			logger.Warn("API key validation failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Error("Invalid API key"))
			return
		}

		// The key acts on behalf of the admin that created it.
		ctx := WithUserID(c.Request.Context(), key.CreatedBy)
		ctx = WithLogger(ctx, logger.With(
			slog.String("api_key_id", key.KeyID),
			slog.String("user_id", key.CreatedBy),
		))
		c.Request = c.Request.WithContext(ctx)
		c.Set(string(businessIDKey), key.BusinessID)
		c.Set(authMethodKey, "api_key")

		c.Next()
	}
}

// GetAPIKeyBusinessID returns the business an API-key-authenticated request is
// scoped to, if any.
func GetAPIKeyBusinessID(c *gin.Context) (string, bool) {
	v, exists := c.Get(string(businessIDKey))
	if !exists {
		return "", false
	}
	businessID, ok := v.(string)
	return businessID, ok
}
