package repositories

import (
	"context"
	"time"

	"github.com/keepon-app/keepon-ledger/internal/core/domain"
)

// APIKeyRepository defines persistence operations for service API keys.
type APIKeyRepository interface {
	// SaveAPIKey persists a new API key (hash only, never the secret).
	SaveAPIKey(ctx context.Context, key domain.APIKey) error

	// FindAPIKeyByID retrieves a key by its identifier.
	FindAPIKeyByID(ctx context.Context, keyID string) (*domain.APIKey, error)

	// ListAPIKeysByBusiness retrieves all keys of a business, newest first.
	ListAPIKeysByBusiness(ctx context.Context, businessID string) ([]domain.APIKey, error)

	// MarkAPIKeyUsed records the time a key last authenticated a request.
	MarkAPIKeyUsed(ctx context.Context, keyID string, usedAt time.Time) error

	// RevokeAPIKey marks a key as revoked.
	RevokeAPIKey(ctx context.Context, businessID string, keyID string, revokedAt time.Time) error
}
