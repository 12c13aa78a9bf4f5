package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keepon-app/keepon-ledger/internal/apperrors"
	"github.com/keepon-app/keepon-ledger/internal/core/domain"
	portsrepo "github.com/keepon-app/keepon-ledger/internal/core/ports/repositories"
	"github.com/keepon-app/keepon-ledger/internal/models"
	"github.com/keepon-app/keepon-ledger/internal/utils/mapping"
)

const apiKeyColumns = `key_id, business_id, name, secret_hash, created_by, created_at, last_used_at, expires_at, revoked_at`

type PgxAPIKeyRepository struct {
	BaseRepository
}

// newPgxAPIKeyRepository creates a new repository for API key data.
func newPgxAPIKeyRepository(pool *pgxpool.Pool) portsrepo.APIKeyRepository {
	return &PgxAPIKeyRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxAPIKeyRepository implements portsrepo.APIKeyRepository
var _ portsrepo.APIKeyRepository = (*PgxAPIKeyRepository)(nil)

func scanAPIKey(row pgx.Row) (models.APIKey, error) {
	var m models.APIKey
	err := row.Scan(
		&m.KeyID,
		&m.BusinessID,
		&m.Name,
		&m.SecretHash,
		&m.CreatedBy,
		&m.CreatedAt,
		&m.LastUsedAt,
		&m.ExpiresAt,
		&m.RevokedAt,
	)
	return m, err
}

// SaveAPIKey persists a new API key. Only the hash of the secret is stored.
func (r *PgxAPIKeyRepository) SaveAPIKey(ctx context.Context, key domain.APIKey) error {
	m := mapping.ToModelAPIKey(key)

	query := `
		INSERT INTO api_keys (` + apiKeyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.KeyID,
		m.BusinessID,
		m.Name,
		m.SecretHash,
		m.CreatedBy,
		m.CreatedAt,
		m.LastUsedAt,
		m.ExpiresAt,
		m.RevokedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: api key %s already exists", apperrors.ErrDuplicate, m.KeyID)
		}
		return fmt.Errorf("failed to save api key %s: %w", m.KeyID, err)
	}
	return nil
}

// FindAPIKeyByID retrieves a key by its identifier.
func (r *PgxAPIKeyRepository) FindAPIKeyByID(ctx context.Context, keyID string) (*domain.APIKey, error) {
	query := `
		SELECT ` + apiKeyColumns + `
		FROM api_keys
		WHERE key_id = $1;
	`
	m, err := scanAPIKey(r.Pool.QueryRow(ctx, query, keyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find api key %s: %w", keyID, err)
	}

	d := mapping.ToDomainAPIKey(m)
	return &d, nil
}

// ListAPIKeysByBusiness retrieves all keys of a business, newest first.
func (r *PgxAPIKeyRepository) ListAPIKeysByBusiness(ctx context.Context, businessID string) ([]domain.APIKey, error) {
	query := `
		SELECT ` + apiKeyColumns + `
		FROM api_keys
		WHERE business_id = $1
		ORDER BY created_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to query api keys for business %s: %w", businessID, err)
	}
	defer rows.Close()

	keys := []domain.APIKey{}
	for rows.Next() {
		m, err := scanAPIKey(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan api key row for business %s: %w", businessID, err)
		}
		keys = append(keys, mapping.ToDomainAPIKey(m))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating api key rows for business %s: %w", businessID, err)
	}

	return keys, nil
}

// MarkAPIKeyUsed records the time a key last authenticated a request.
func (r *PgxAPIKeyRepository) MarkAPIKeyUsed(ctx context.Context, keyID string, usedAt time.Time) error {
	query := `
		UPDATE api_keys
		SET last_used_at = $2
		WHERE key_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, keyID, usedAt)
	if err != nil {
		return fmt.Errorf("failed to mark api key %s as used: %w", keyID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// RevokeAPIKey marks a key as revoked. Revoking an already-revoked key is a
// conflict so callers can surface the distinction.
func (r *PgxAPIKeyRepository) RevokeAPIKey(ctx context.Context, businessID string, keyID string, revokedAt time.Time) error {
	query := `
		UPDATE api_keys
		SET revoked_at = $3
		WHERE business_id = $1 AND key_id = $2 AND revoked_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, businessID, keyID, revokedAt)
	if err != nil {
		return fmt.Errorf("failed to revoke api key %s: %w", keyID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		_, findErr := r.FindAPIKeyByID(ctx, keyID)
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		} else if findErr != nil {
			return fmt.Errorf("failed to check api key status after revocation attempt for %s: %w", keyID, findErr)
		}
		return fmt.Errorf("%w: api key %s is already revoked", apperrors.ErrConflict, keyID)
	}
	return nil
}
