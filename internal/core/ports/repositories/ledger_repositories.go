package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/keepon-app/keepon-ledger/internal/core/domain"
)

// TransactionFilter narrows a transaction listing. Zero values mean "no filter".
type TransactionFilter struct {
	EntryType *domain.EntryType
	FromDate  *time.Time
	ToDate    *time.Time
	Search    string // Matches description and reference, case-insensitive
}

// LedgerReader defines read operations for posted transactions
type LedgerReader interface {
	// FindTransactionByID retrieves a transaction by its document reference.
	FindTransactionByID(ctx context.Context, businessID string, transactionID string) (*domain.Transaction, error)

	// FindTransactionByIdempotencyKey retrieves the transaction previously
	// posted under the given idempotency key, if any.
	FindTransactionByIdempotencyKey(ctx context.Context, businessID string, key string) (*domain.Transaction, error)

	// FindLinesByTransactionID retrieves all entry lines of a transaction.
	FindLinesByTransactionID(ctx context.Context, businessID string, transactionID string) ([]domain.EntryLine, error)

	// ListTransactions retrieves a paginated list of transactions for a business
	// using token-based pagination. It returns the transactions, a token for the
	// next page, and an error.
	ListTransactions(ctx context.Context, businessID string, filter TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// LedgerWriter defines write operations for posting and reversing transactions
type LedgerWriter interface {
	// CreateTransaction atomically assigns the next document reference, persists
	// the transaction with its lines and postings, and applies balanceChanges to
	// the referenced accounts. The returned transaction carries the assigned
	// reference and running balances.
	CreateTransaction(ctx context.Context, txn domain.Transaction, balanceChanges map[string]decimal.Decimal) (*domain.Transaction, error)

	// CreateReversal atomically persists the reversing transaction, applies its
	// balance changes, and flips the original transaction's status to Reversed
	// with the back-link set. It fails with a conflict if the original was
	// already reversed.
	CreateReversal(ctx context.Context, reversing domain.Transaction, balanceChanges map[string]decimal.Decimal, originalID string) (*domain.Transaction, error)
}

// PostingReader defines read operations for the per-account ledger projection
type PostingReader interface {
	// ListPostingsByAccount retrieves a paginated account history with running
	// balances using token-based pagination.
	ListPostingsByAccount(ctx context.Context, businessID string, accountCode string, limit int, nextToken *string) ([]domain.Posting, *string, error)
}

// LedgerRepositoryFacade combines all ledger-related repository interfaces
// This is a facade for clients that need access to all operations
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
	PostingReader
}

// LedgerRepositoryWithTx extends LedgerRepositoryFacade with transaction capabilities
type LedgerRepositoryWithTx interface {
	LedgerRepositoryFacade
	TransactionManager
}
