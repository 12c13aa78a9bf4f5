package dto

import (
	"time"

	"github.com/keepon-app/keepon-ledger/internal/core/domain"
)

// CreateAPIKeyRequest defines the data needed to create an API key.
type CreateAPIKeyRequest struct {
	Name      string `json:"name" binding:"required"`
	ExpiresIn *int64 `json:"expiresInSeconds"` // Optional TTL in seconds
}

// APIKeyResponse defines the data returned for an API key.
type APIKeyResponse struct {
	KeyID      string     `json:"keyID"`
	Name       string     `json:"name"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

// CreateAPIKeyResponse includes the plaintext secret, returned exactly once.
type CreateAPIKeyResponse struct {
	APIKeyResponse
	Secret string `json:"secret"`
}

// ToAPIKeyResponse converts a domain.APIKey to APIKeyResponse DTO.
func ToAPIKeyResponse(k *domain.APIKey) APIKeyResponse {
	return APIKeyResponse{
		KeyID:      k.KeyID,
		Name:       k.Name,
		CreatedAt:  k.CreatedAt,
		LastUsedAt: k.LastUsedAt,
		ExpiresAt:  k.ExpiresAt,
	}
}

// ToAPIKeyResponses converts a slice of domain.APIKey to []APIKeyResponse.
func ToAPIKeyResponses(keys []domain.APIKey) []APIKeyResponse {
	responses := make([]APIKeyResponse, len(keys))
	for i, k := range keys {
		responses[i] = ToAPIKeyResponse(&k)
	}
	return responses
}
