package services

import (
	"context"
	"time"

	"github.com/keepon-app/keepon-ledger/internal/core/domain"
)

// APIKeySvc defines operations for service API key management
type APIKeySvc interface {
	// CreateKey generates a new API key for a business.
	// Returns the plaintext secret (only shown once) and the key details.
	CreateKey(ctx context.Context, businessID, name, userID string, expiresIn *time.Duration) (string, *domain.APIKey, error)

	// ListKeys returns all API keys of a business.
	ListKeys(ctx context.Context, businessID, userID string) ([]domain.APIKey, error)

	// RevokeKey revokes a specific API key.
	RevokeKey(ctx context.Context, businessID, keyID, userID string) error

	// ValidateKey checks if a key secret is valid and returns the key.
	// Updates the last_used_at timestamp on success.
	ValidateKey(ctx context.Context, keyString string) (*domain.APIKey, error)
}
