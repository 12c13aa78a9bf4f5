package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/keepon-app/keepon-ledger/internal/apperrors"
	"github.com/keepon-app/keepon-ledger/internal/core/domain"
	portsrepo "github.com/keepon-app/keepon-ledger/internal/core/ports/repositories"
	portssvc "github.com/keepon-app/keepon-ledger/internal/core/ports/services"
	"github.com/keepon-app/keepon-ledger/internal/dto"
	"github.com/keepon-app/keepon-ledger/internal/middleware"
	"github.com/keepon-app/keepon-ledger/internal/utils/accounting"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountNotPostable = errors.New("account does not accept manual entries")
	ErrAccountInactive    = errors.New("account is inactive")
)

// ledgerService provides posting, reversal and history operations.
type ledgerService struct {
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	accountSvc  portssvc.AccountSvcFacade
	businessSvc portssvc.BusinessSvcFacade
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, accountSvc portssvc.AccountSvcFacade, businessSvc portssvc.BusinessSvcFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{
		ledgerRepo:  ledgerRepo,
		accountSvc:  accountSvc,
		businessSvc: businessSvc,
	}
}

// Ensure ledgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// resolveAccounts fetches the accounts referenced by lines and validates that
// each exists, is active, and (for manual entries) accepts direct postings.
func (s *ledgerService) resolveAccounts(ctx context.Context, businessID string, lines []domain.EntryLine, entryType domain.EntryType, userID string) (map[string]domain.Account, error) {
	codes := accounting.AccountCodes(lines)
	accountsMap, err := s.accountSvc.GetAccountsByCodes(ctx, businessID, codes, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	for _, code := range codes {
		acc, found := accountsMap[code]
		if !found {
			return nil, fmt.Errorf("%w: %s: %s", apperrors.ErrValidation, ErrAccountNotFound, code)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: %s: %s", apperrors.ErrValidation, ErrAccountInactive, code)
		}
		if entryType == domain.EntryManual && !acc.Postable {
			return nil, fmt.Errorf("%w: %s: %s", apperrors.ErrValidation, ErrAccountNotPostable, code)
		}
	}
	return accountsMap, nil
}

func accountTypesOf(accounts map[string]domain.Account) map[string]domain.AccountType {
	types := make(map[string]domain.AccountType, len(accounts))
	for code, acc := range accounts {
		types[code] = acc.AccountType
	}
	return types
}

// PostTransaction validates an entry batch and posts it as an immutable
// transaction with a generated document reference.
func (s *ledgerService) PostTransaction(ctx context.Context, businessID string, req dto.PostTransactionRequest, userID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.businessSvc.AuthorizeUserAction(ctx, userID, businessID, domain.RoleMember); err != nil {
		logger.Warn("Authorization failed for PostTransaction", slog.String("user_id", userID), slog.String("business_id", businessID), slog.String("error", err.Error()))
		return nil, err
	}

	if !req.EntryType.Valid() {
		return nil, fmt.Errorf("%w: unknown entry type %q", apperrors.ErrValidation, req.EntryType)
	}

	// A repeated submission under the same idempotency key is a conflict;
	// the client already holds the result of the first post.
	if req.IdempotencyKey != nil && *req.IdempotencyKey != "" {
		existing, err := s.ledgerRepo.FindTransactionByIdempotencyKey(ctx, businessID, *req.IdempotencyKey)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to check idempotency key", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: an entry was already posted with this idempotency key (%s)", apperrors.ErrConflict, existing.TransactionID)
		}
	}

	now := time.Now().UTC()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}

	lines := make([]domain.EntryLine, len(req.Lines))
	for i, lineReq := range req.Lines {
		lines[i] = domain.EntryLine{
			LineID:            uuid.NewString(),
			LineDate:          lineReq.Date,
			DebitAccountCode:  lineReq.DebitAccount,
			CreditAccountCode: lineReq.CreditAccount,
			Amount:            lineReq.Amount,
			Description:       lineReq.Description,
			Reference:         lineReq.Reference,
			AuditFields:       audit,
		}
	}

	if err := accounting.ValidateEntryLines(lines); err != nil {
		return nil, err
	}

	accountsMap, err := s.resolveAccounts(ctx, businessID, lines, req.EntryType, userID)
	if err != nil {
		return nil, err
	}

	balanceChanges, err := accounting.BalanceChanges(lines, accountTypesOf(accountsMap))
	if err != nil {
		return nil, err
	}

	txn := domain.Transaction{
		// TransactionID is assigned by the repository from the per-type sequence.
		BusinessID:     businessID,
		EntryType:      req.EntryType,
		Description:    req.Description,
		TotalAmount:    accounting.BatchTotal(lines),
		Status:         domain.Posted,
		IdempotencyKey: req.IdempotencyKey,
		Lines:          lines,
		AuditFields:    audit,
	}

	posted, err := s.ledgerRepo.CreateTransaction(ctx, txn, balanceChanges)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost an idempotency race to a concurrent post.
			return nil, fmt.Errorf("%w: an entry was already posted with this idempotency key", apperrors.ErrConflict)
		}
		logger.Error("Failed to post transaction", slog.String("error", err.Error()), slog.String("business_id", businessID))
		return nil, fmt.Errorf("failed to post transaction: %w", err)
	}

	logger.Info("Transaction posted successfully", slog.String("transaction_id", posted.TransactionID), slog.String("business_id", businessID))
	return posted, nil
}

func (s *ledgerService) validateReversalAndGetOriginal(ctx context.Context, businessID string, transactionID string, userID string) (*domain.Transaction, []domain.EntryLine, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.businessSvc.AuthorizeUserAction(ctx, userID, businessID, domain.RoleMember); err != nil {
		logger.Warn("Authorization failed for ReverseTransaction", slog.String("error", err.Error()))
		return nil, nil, err
	}

	original, err := s.ledgerRepo.FindTransactionByID(ctx, businessID, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Original transaction not found for reversal", slog.String("transaction_id", transactionID))
			return nil, nil, apperrors.ErrNotFound
		}
		logger.Error("Failed to fetch original transaction for reversal", slog.String("error", err.Error()))
		return nil, nil, fmt.Errorf("failed to retrieve original transaction: %w", err)
	}

	if !original.EntryType.Reversible() {
		return nil, nil, fmt.Errorf("%w: %s entries cannot be reversed", apperrors.ErrForbidden, original.EntryType)
	}
	if original.Status != domain.Posted {
		logger.Warn("Attempted to reverse non-posted transaction", slog.String("status", string(original.Status)))
		return nil, nil, fmt.Errorf("%w: transaction %s was already reversed", apperrors.ErrConflict, transactionID)
	}
	if original.IsReversal() {
		return nil, nil, fmt.Errorf("%w: cannot reverse a transaction that is itself a reversal", apperrors.ErrConflict)
	}

	originalLines, err := s.ledgerRepo.FindLinesByTransactionID(ctx, businessID, transactionID)
	if err != nil {
		logger.Error("Failed to fetch original entry lines for reversal", slog.String("error", err.Error()))
		return nil, nil, fmt.Errorf("failed to retrieve original entry lines: %w", err)
	}
	return original, originalLines, nil
}

// ReverseTransaction creates a mirror-image reversal of an existing
// transaction and marks the original as reversed, atomically.
func (s *ledgerService) ReverseTransaction(ctx context.Context, businessID string, transactionID string, userID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, originalLines, err := s.validateReversalAndGetOriginal(ctx, businessID, transactionID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}

	// Mirror each line by swapping the debit and credit accounts.
	reversedLines := make([]domain.EntryLine, len(originalLines))
	for i, origLine := range originalLines {
		reversedLines[i] = domain.EntryLine{
			LineID:            uuid.NewString(),
			LineDate:          origLine.LineDate,
			DebitAccountCode:  origLine.CreditAccountCode,
			CreditAccountCode: origLine.DebitAccountCode,
			Amount:            origLine.Amount,
			Description:       origLine.Description,
			Reference:         origLine.Reference,
			AuditFields:       audit,
		}
	}

	accountsMap, err := s.resolveAccounts(ctx, businessID, reversedLines, original.EntryType, userID)
	if err != nil {
		logger.Error("Failed to fetch accounts for reversal balance calculation", slog.String("error", err.Error()))
		return nil, err
	}

	balanceChanges, err := accounting.BalanceChanges(reversedLines, accountTypesOf(accountsMap))
	if err != nil {
		return nil, fmt.Errorf("failed to calculate reversal balance changes: %w", err)
	}

	reversing := domain.Transaction{
		BusinessID:  businessID,
		EntryType:   original.EntryType,
		Description: fmt.Sprintf("Reversal of %s: %s", original.TransactionID, original.Description),
		TotalAmount: original.TotalAmount,
		Status:      domain.Posted,
		ReversalOf:  &original.TransactionID,
		Lines:       reversedLines,
		AuditFields: audit,
	}

	posted, err := s.ledgerRepo.CreateReversal(ctx, reversing, balanceChanges, original.TransactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// Lost a race to a concurrent reversal of the same transaction.
			return nil, fmt.Errorf("%w: transaction %s was already reversed", apperrors.ErrConflict, transactionID)
		}
		logger.Error("Failed to save reversal", slog.String("error", err.Error()), slog.String("original_id", transactionID))
		return nil, fmt.Errorf("failed to save reversal: %w", err)
	}

	logger.Info("Transaction reversed successfully", slog.String("reversing_id", posted.TransactionID), slog.String("original_id", transactionID))
	return posted, nil
}

// GetTransactionByID retrieves a transaction with its entry lines.
func (s *ledgerService) GetTransactionByID(ctx context.Context, businessID string, transactionID string, userID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.businessSvc.AuthorizeUserAction(ctx, userID, businessID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	txn, err := s.ledgerRepo.FindTransactionByID(ctx, businessID, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find transaction by ID", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		}
		return nil, err
	}

	lines, err := s.ledgerRepo.FindLinesByTransactionID(ctx, businessID, transactionID)
	if err != nil {
		logger.Error("Failed to fetch entry lines for transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to retrieve entry lines for transaction %s: %w", transactionID, apperrors.ErrInternal)
	}
	txn.Lines = lines

	logger.Debug("Transaction retrieved successfully", slog.String("transaction_id", transactionID), slog.Int("line_count", len(lines)))
	return txn, nil
}

// ListTransactions retrieves a paginated list of transactions in a business.
func (s *ledgerService) ListTransactions(ctx context.Context, businessID string, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.businessSvc.AuthorizeUserAction(ctx, userID, businessID, domain.RoleReadOnly); err != nil {
		logger.Warn("Authorization failed for ListTransactions", "error", err)
		return nil, err
	}

	filter, err := buildTransactionFilter(params)
	if err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	txns, nextToken, err := s.ledgerRepo.ListTransactions(ctx, businessID, filter, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list transactions from repository", "error", err)
		return nil, fmt.Errorf("failed to retrieve transactions: %w", err)
	}

	resp := &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    nextToken,
		HasMore:      nextToken != nil,
	}

	logger.Info("Transactions listed successfully", "count", len(txns))
	return resp, nil
}

// ListAccountPostings retrieves a paginated ledger history for one account.
func (s *ledgerService) ListAccountPostings(ctx context.Context, businessID string, accountCode string, userID string, params dto.ListPostingsParams) (*dto.ListPostingsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.businessSvc.AuthorizeUserAction(ctx, userID, businessID, domain.RoleReadOnly); err != nil {
		logger.Warn("Authorization failed for ListAccountPostings", "error", err)
		return nil, err
	}

	// Surface a NotFound for unknown accounts instead of an empty page.
	if _, err := s.accountSvc.GetAccountByCode(ctx, businessID, accountCode, userID); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	postings, nextToken, err := s.ledgerRepo.ListPostingsByAccount(ctx, businessID, accountCode, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list postings from repository", "error", err)
		return nil, fmt.Errorf("failed to retrieve account history: %w", err)
	}

	postingResponses := make([]dto.PostingResponse, len(postings))
	for i, p := range postings {
		postingResponses[i] = dto.ToPostingResponse(&p)
	}

	resp := &dto.ListPostingsResponse{
		Postings:  postingResponses,
		NextToken: nextToken,
		HasMore:   nextToken != nil,
	}

	logger.Info("Account postings listed successfully", "account_code", accountCode, "count", len(postings))
	return resp, nil
}

// buildTransactionFilter parses the raw listing params into a repository filter.
func buildTransactionFilter(params dto.ListTransactionsParams) (portsrepo.TransactionFilter, error) {
	var filter portsrepo.TransactionFilter

	if params.EntryType != nil && *params.EntryType != "" {
		et := domain.EntryType(*params.EntryType)
		if !et.Valid() {
			return filter, fmt.Errorf("%w: unknown entry type %q", apperrors.ErrValidation, *params.EntryType)
		}
		filter.EntryType = &et
	}
	if params.FromDate != nil && *params.FromDate != "" {
		from, err := time.Parse(time.RFC3339, *params.FromDate)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid fromDate: %s", apperrors.ErrValidation, *params.FromDate)
		}
		filter.FromDate = &from
	}
	if params.ToDate != nil && *params.ToDate != "" {
		to, err := time.Parse(time.RFC3339, *params.ToDate)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid toDate: %s", apperrors.ErrValidation, *params.ToDate)
		}
		filter.ToDate = &to
	}
	filter.Search = params.Search
	return filter, nil
}
