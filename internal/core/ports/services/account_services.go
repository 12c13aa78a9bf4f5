package services

import (
	"context"

	"github.com/keepon-app/keepon-ledger/internal/core/domain"
	"github.com/keepon-app/keepon-ledger/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByCode retrieves a specific account by its business-scoped code.
	GetAccountByCode(ctx context.Context, businessID string, code string, userID string) (*domain.Account, error)

	// GetAccountsByCodes retrieves multiple accounts by their codes.
	GetAccountsByCodes(ctx context.Context, businessID string, codes []string, userID string) (map[string]domain.Account, error)

	// ListAccounts retrieves the chart of accounts for a business, with
	// optional filtering to postable accounts only.
	ListAccounts(ctx context.Context, businessID string, userID string, params dto.ListAccountsParams) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account.
	CreateAccount(ctx context.Context, businessID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccount updates an existing account's details.
	UpdateAccount(ctx context.Context, businessID string, code string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, businessID string, code string, userID string) error
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
