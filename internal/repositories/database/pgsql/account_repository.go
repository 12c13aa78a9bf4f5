package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/keepon-app/keepon-ledger/internal/apperrors"
	"github.com/keepon-app/keepon-ledger/internal/core/domain"
	portsrepo "github.com/keepon-app/keepon-ledger/internal/core/ports/repositories"
	"github.com/keepon-app/keepon-ledger/internal/models"
	"github.com/keepon-app/keepon-ledger/internal/utils/mapping"
)

const accountColumns = `account_id, business_id, code, name, account_type, postable, description, is_active, balance, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryWithTx
var _ portsrepo.AccountRepositoryWithTx = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.BusinessID,
		&m.Code,
		&m.Name,
		&m.AccountType,
		&m.Postable,
		&m.Description,
		&m.IsActive,
		&m.Balance,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.BusinessID,
		m.Code,
		m.Name,
		m.AccountType,
		m.Postable,
		m.Description,
		m.IsActive,
		m.Balance,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique violation
				return fmt.Errorf("%w: account with code %s already exists", apperrors.ErrDuplicate, m.Code)
			}
		}
		return fmt.Errorf("failed to save account %s: %w", m.Code, err)
	}
	return nil
}

// FindAccountByCode retrieves an account by its business-scoped code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, businessID string, code string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE business_id = $1 AND code = $2;
	`
	m, err := scanAccount(r.Pool.QueryRow(ctx, query, businessID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, code)
		}
		return nil, fmt.Errorf("failed to find account by code %s: %w", code, err)
	}

	domainAcc := mapping.ToDomainAccount(m)
	return &domainAcc, nil
}

// FindAccountsByCodes retrieves multiple accounts by code, keyed by code.
func (r *PgxAccountRepository) FindAccountsByCodes(ctx context.Context, businessID string, codes []string) (map[string]domain.Account, error) {
	if len(codes) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE business_id = $1 AND code = ANY($2);
	`

	rows, err := r.Pool.Query(ctx, query, businessID, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by codes: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row during batch fetch: %w", err)
		}
		accountsMap[m.Code] = mapping.ToDomainAccount(m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows during batch fetch: %w", err)
	}

	// Missing codes are simply absent from the map; the service decides
	// whether that is an error.
	return accountsMap, nil
}

// ListAccounts retrieves a paginated list of active accounts for a business.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, businessID string, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE business_id = $1
		ORDER BY code
		LIMIT $2 OFFSET $3;
	`

	rows, err := r.Pool.Query(ctx, query, businessID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for business %s: %w", businessID, err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row for business %s: %w", businessID, err)
		}
		accounts = append(accounts, mapping.ToDomainAccount(m))
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating account rows for business %s: %w", businessID, rows.Err())
	}

	return accounts, nil
}

// UpdateAccount updates an existing account in the database.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	// Code, type and balance are immutable through this path.
	query := `
		UPDATE accounts
		SET name = $3, description = $4, is_active = $5, last_updated_at = $6, last_updated_by = $7
		WHERE business_id = $1 AND code = $2;
	`

	cmdTag, err := r.Pool.Exec(ctx, query,
		m.BusinessID,
		m.Code,
		m.Name,
		m.Description,
		m.IsActive,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to execute update account %s: %w", m.Code, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateAccount marks an account as inactive.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, businessID string, code string, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $3, last_updated_by = $4
		WHERE business_id = $1 AND code = $2 AND is_active = TRUE;
	`

	cmdTag, err := r.Pool.Exec(ctx, query, businessID, code, now, userID)
	if err != nil {
		return fmt.Errorf("failed to execute deactivate account %s: %w", code, err)
	}

	if cmdTag.RowsAffected() == 0 {
		// Distinguish a missing account from one that was already inactive.
		_, findErr := r.FindAccountByCode(ctx, businessID, code)
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		} else if findErr != nil {
			return fmt.Errorf("failed to check account status after deactivation attempt for %s: %w", code, findErr)
		}
		return fmt.Errorf("%w: account %s is already inactive", apperrors.ErrConflict, code)
	}

	return nil
}

// FindAccountsByCodesForUpdate retrieves multiple accounts by code and locks the rows for update.
// Must be called within a transaction.
func (r *PgxAccountRepository) FindAccountsByCodesForUpdate(ctx context.Context, tx pgx.Tx, businessID string, codes []string) (map[string]domain.Account, error) {
	if len(codes) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE business_id = $1 AND code = ANY($2)
		FOR UPDATE;
	`

	rows, err := tx.Query(ctx, query, businessID, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by codes for update: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked account row: %w", err)
		}
		accountsMap[m.Code] = mapping.ToDomainAccount(m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked account rows: %w", err)
	}

	if len(accountsMap) != len(codes) {
		missing := []string{}
		for _, code := range codes {
			if _, found := accountsMap[code]; !found {
				missing = append(missing, code)
			}
		}
		slog.WarnContext(ctx, "Some accounts requested for update lock were not found", "missing_accounts", missing)
		return nil, fmt.Errorf("%w: could not find or lock all requested accounts, missing: %v", apperrors.ErrNotFound, missing)
	}

	return accountsMap, nil
}

// UpdateAccountBalancesInTx updates balances for multiple accounts within a transaction.
func (r *PgxAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, businessID string, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(balanceChanges) == 0 {
		return nil
	}

	query := `
		UPDATE accounts
		SET balance = COALESCE(balance, 0) + $3, last_updated_at = $4, last_updated_by = $5
		WHERE business_id = $1 AND code = $2;
	`

	batch := &pgx.Batch{}
	codes := make([]string, 0, len(balanceChanges))
	for code, delta := range balanceChanges {
		if !delta.IsZero() {
			batch.Queue(query, businessID, code, delta, now, userID)
			codes = append(codes, code)
		}
	}

	if batch.Len() == 0 {
		return nil
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	updatedCount := 0
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = fmt.Errorf("failed to update balance for account %s: %w", codes[i], err)
			}
		} else if ct.RowsAffected() == 0 {
			if batchErr == nil {
				batchErr = fmt.Errorf("%w: account %s not found during balance update", apperrors.ErrNotFound, codes[i])
			}
		} else {
			updatedCount++
		}
	}

	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close balance update batch: %w", err)
	}
	if batchErr != nil {
		return batchErr
	}

	if updatedCount != batch.Len() {
		slog.WarnContext(ctx, "Mismatch between expected and actual account balance updates", "expected", batch.Len(), "actual", updatedCount)
	}

	return nil
}
