package domain

import "time"

// APIKey represents a machine-client credential scoped to one business.
// Only the bcrypt hash of the secret is stored.
type APIKey struct {
	KeyID      string     `json:"keyID"`
	BusinessID string     `json:"businessID"`
	Name       string     `json:"name"`
	SecretHash string     `json:"-"`
	CreatedBy  string     `json:"createdBy"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	RevokedAt  *time.Time `json:"-"`
}

// IsExpired checks if the key has expired.
func (k *APIKey) IsExpired() bool {
	if k.ExpiresAt == nil {
		return false
	}
	return k.ExpiresAt.Before(time.Now())
}

// IsRevoked checks if the key has been revoked.
func (k *APIKey) IsRevoked() bool {
	return k.RevokedAt != nil
}
