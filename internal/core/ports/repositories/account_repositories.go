package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/keepon-app/keepon-ledger/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByCode retrieves an account by its business-scoped code.
	FindAccountByCode(ctx context.Context, businessID string, code string) (*domain.Account, error)

	// FindAccountsByCodes retrieves multiple accounts by code, keyed by code.
	FindAccountsByCodes(ctx context.Context, businessID string, codes []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts for a given business.
	ListAccounts(ctx context.Context, businessID string, limit int, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's details.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, businessID string, code string, userID string, now time.Time) error
}

// AccountTransactionSupport defines operations that support ledger postings
type AccountTransactionSupport interface {
	// FindAccountsByCodesForUpdate selects accounts and locks them for update within a transaction.
	FindAccountsByCodesForUpdate(ctx context.Context, tx pgx.Tx, businessID string, codes []string) (map[string]domain.Account, error)

	// UpdateAccountBalancesInTx applies balance deltas to multiple accounts within a given transaction.
	UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, businessID string, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
// This is a facade for clients that need access to all operations
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}

// AccountRepositoryWithTx extends AccountRepositoryFacade with transaction capabilities
type AccountRepositoryWithTx interface {
	AccountRepositoryFacade
	TransactionManager
}
