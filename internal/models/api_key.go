package models

import "time"

// APIKey represents a row of the api_keys table.
type APIKey struct {
	KeyID      string     `db:"key_id"`
	BusinessID string     `db:"business_id"`
	Name       string     `db:"name"`
	SecretHash string     `db:"secret_hash"`
	CreatedBy  string     `db:"created_by"`
	CreatedAt  time.Time  `db:"created_at"`
	LastUsedAt *time.Time `db:"last_used_at"`
	ExpiresAt  *time.Time `db:"expires_at"`
	RevokedAt  *time.Time `db:"revoked_at"`
}
