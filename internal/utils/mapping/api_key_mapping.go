package mapping

import (
	"github.com/keepon-app/keepon-ledger/internal/core/domain"
	"github.com/keepon-app/keepon-ledger/internal/models"
)

// ToModelAPIKey converts a domain APIKey to a model APIKey
func ToModelAPIKey(d domain.APIKey) models.APIKey {
	return models.APIKey{
		KeyID:      d.KeyID,
		BusinessID: d.BusinessID,
		Name:       d.Name,
		SecretHash: d.SecretHash,
		CreatedBy:  d.CreatedBy,
		CreatedAt:  d.CreatedAt,
		LastUsedAt: d.LastUsedAt,
		ExpiresAt:  d.ExpiresAt,
		RevokedAt:  d.RevokedAt,
	}
}

// ToDomainAPIKey converts a model APIKey to a domain APIKey
func ToDomainAPIKey(m models.APIKey) domain.APIKey {
	return domain.APIKey{
		KeyID:      m.KeyID,
		BusinessID: m.BusinessID,
		Name:       m.Name,
		SecretHash: m.SecretHash,
		CreatedBy:  m.CreatedBy,
		CreatedAt:  m.CreatedAt,
		LastUsedAt: m.LastUsedAt,
		ExpiresAt:  m.ExpiresAt,
		RevokedAt:  m.RevokedAt,
	}
}
