package services

import (
	"context"

	"github.com/keepon-app/keepon-ledger/internal/core/domain"
	"github.com/keepon-app/keepon-ledger/internal/dto"
)

// LedgerReaderSvc defines read operations for posted transactions
type LedgerReaderSvc interface {
	// GetTransactionByID retrieves a transaction with its entry lines.
	GetTransactionByID(ctx context.Context, businessID string, transactionID string, userID string) (*domain.Transaction, error)

	// ListTransactions retrieves a paginated list of transactions in a business.
	ListTransactions(ctx context.Context, businessID string, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)

	// ListAccountPostings retrieves a paginated ledger history for one account,
	// each row carrying the account's running balance after the posting.
	ListAccountPostings(ctx context.Context, businessID string, accountCode string, userID string, params dto.ListPostingsParams) (*dto.ListPostingsResponse, error)
}

// LedgerWriterSvc defines write operations for posting and reversing transactions
type LedgerWriterSvc interface {
	// PostTransaction validates an entry batch and posts it as an immutable
	// transaction with a generated document reference.
	PostTransaction(ctx context.Context, businessID string, req dto.PostTransactionRequest, userID string) (*domain.Transaction, error)

	// ReverseTransaction creates a mirror-image reversal of an existing
	// transaction and marks the original as reversed.
	ReverseTransaction(ctx context.Context, businessID string, transactionID string, userID string) (*domain.Transaction, error)
}

// LedgerSvcFacade combines all ledger-related service interfaces
// This is a facade for clients that need access to all operations
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
