package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keepon-app/keepon-ledger/internal/apperrors"
	"github.com/keepon-app/keepon-ledger/internal/core/domain"
	portsrepo "github.com/keepon-app/keepon-ledger/internal/core/ports/repositories"
	"github.com/keepon-app/keepon-ledger/internal/models"
	"github.com/keepon-app/keepon-ledger/internal/utils/mapping"
)

const businessColumns = `business_id, name, description, is_active, created_at, created_by, last_updated_at, last_updated_by`

type PgxBusinessRepository struct {
	BaseRepository
}

// newPgxBusinessRepository creates a new repository for business data.
func newPgxBusinessRepository(pool *pgxpool.Pool) portsrepo.BusinessRepositoryFacade {
	return &PgxBusinessRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxBusinessRepository implements portsrepo.BusinessRepositoryFacade
var _ portsrepo.BusinessRepositoryFacade = (*PgxBusinessRepository)(nil)

func scanBusiness(row pgx.Row) (models.Business, error) {
	var m models.Business
	err := row.Scan(
		&m.BusinessID,
		&m.Name,
		&m.Description,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveBusiness inserts a new business together with the creator's membership.
// Both rows commit or roll back together.
func (r *PgxBusinessRepository) SaveBusiness(ctx context.Context, business domain.Business, creatorMembership domain.UserBusiness) error {
	m := mapping.ToModelBusiness(business)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	businessQuery := `
		INSERT INTO businesses (` + businessColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err = tx.Exec(ctx, businessQuery,
		m.BusinessID,
		m.Name,
		m.Description,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: business %s already exists", apperrors.ErrDuplicate, m.BusinessID)
		}
		return fmt.Errorf("failed to save business %s: %w", m.BusinessID, err)
	}

	membershipQuery := `
		INSERT INTO business_users (user_id, business_id, role, joined_at)
		VALUES ($1, $2, $3, $4);
	`
	_, err = tx.Exec(ctx, membershipQuery,
		creatorMembership.UserID,
		creatorMembership.BusinessID,
		string(creatorMembership.Role),
		creatorMembership.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save creator membership for business %s: %w", m.BusinessID, err)
	}

	return r.Commit(ctx, tx)
}

// FindBusinessByID retrieves a business by its identifier.
func (r *PgxBusinessRepository) FindBusinessByID(ctx context.Context, businessID string) (*domain.Business, error) {
	query := `
		SELECT ` + businessColumns + `
		FROM businesses
		WHERE business_id = $1;
	`
	m, err := scanBusiness(r.Pool.QueryRow(ctx, query, businessID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: business %s", apperrors.ErrNotFound, businessID)
		}
		return nil, fmt.Errorf("failed to find business %s: %w", businessID, err)
	}

	d := mapping.ToDomainBusiness(m)
	return &d, nil
}

// ListBusinessesByUser retrieves the businesses a user is a member of,
// excluding memberships that were removed.
func (r *PgxBusinessRepository) ListBusinessesByUser(ctx context.Context, userID string) ([]domain.Business, error) {
	query := `
		SELECT b.business_id, b.name, b.description, b.is_active, b.created_at, b.created_by, b.last_updated_at, b.last_updated_by
		FROM businesses b
		JOIN business_users bu ON b.business_id = bu.business_id
		WHERE bu.user_id = $1 AND bu.role != $2
		ORDER BY b.name;
	`
	rows, err := r.Pool.Query(ctx, query, userID, string(domain.RoleRemoved))
	if err != nil {
		return nil, fmt.Errorf("failed to query businesses for user %s: %w", userID, err)
	}
	defer rows.Close()

	businesses := []domain.Business{}
	for rows.Next() {
		m, err := scanBusiness(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan business row for user %s: %w", userID, err)
		}
		businesses = append(businesses, mapping.ToDomainBusiness(m))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating business rows for user %s: %w", userID, err)
	}

	return businesses, nil
}

// FindUserBusinessRole retrieves a user's membership record in a business.
func (r *PgxBusinessRepository) FindUserBusinessRole(ctx context.Context, userID string, businessID string) (*domain.UserBusiness, error) {
	query := `
		SELECT user_id, business_id, role, joined_at
		FROM business_users
		WHERE user_id = $1 AND business_id = $2;
	`
	var m models.UserBusiness
	err := r.Pool.QueryRow(ctx, query, userID, businessID).Scan(
		&m.UserID,
		&m.BusinessID,
		&m.Role,
		&m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find membership for user %s in business %s: %w", userID, businessID, err)
	}

	d := mapping.ToDomainUserBusiness(m)
	return &d, nil
}

// UpdateBusiness updates an existing business's details.
func (r *PgxBusinessRepository) UpdateBusiness(ctx context.Context, business domain.Business) error {
	m := mapping.ToModelBusiness(business)

	query := `
		UPDATE businesses
		SET name = $2, description = $3, is_active = $4, last_updated_at = $5, last_updated_by = $6
		WHERE business_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.BusinessID,
		m.Name,
		m.Description,
		m.IsActive,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to execute update business %s: %w", m.BusinessID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpsertUserBusinessRole inserts or updates a user's role in a business.
func (r *PgxBusinessRepository) UpsertUserBusinessRole(ctx context.Context, membership domain.UserBusiness) error {
	query := `
		INSERT INTO business_users (user_id, business_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, business_id)
		DO UPDATE SET role = EXCLUDED.role;
	`
	_, err := r.Pool.Exec(ctx, query,
		membership.UserID,
		membership.BusinessID,
		string(membership.Role),
		membership.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert membership for user %s in business %s: %w", membership.UserID, membership.BusinessID, err)
	}
	return nil
}
