package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/keepon-app/keepon-ledger/internal/apperrors"
	"github.com/keepon-app/keepon-ledger/internal/core/domain"
	portsrepo "github.com/keepon-app/keepon-ledger/internal/core/ports/repositories"
	"github.com/keepon-app/keepon-ledger/internal/models"
	"github.com/keepon-app/keepon-ledger/internal/utils/accounting"
	"github.com/keepon-app/keepon-ledger/internal/utils/mapping"
	"github.com/keepon-app/keepon-ledger/internal/utils/pagination"
	"github.com/keepon-app/keepon-ledger/internal/utils/reference"
)

const transactionColumns = `transaction_id, business_id, entry_type, description, total_amount, status, reversal_of, reversed_by, idempotency_key, created_at, created_by, last_updated_at, last_updated_by`

type PgxLedgerRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxLedgerRepository creates a new repository for posted transactions.
func newPgxLedgerRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.LedgerRepositoryWithTx {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepositoryWithTx
var _ portsrepo.LedgerRepositoryWithTx = (*PgxLedgerRepository)(nil)

// nextReference claims the next sequence value for (business, entry type) and
// formats the document reference. The upsert serializes concurrent posters of
// the same entry type on the sequence row, so references never collide or gap
// within a committed history.
func (r *PgxLedgerRepository) nextReference(ctx context.Context, tx pgx.Tx, businessID string, entryType domain.EntryType) (string, error) {
	query := `
		INSERT INTO reference_sequences (business_id, entry_type, next_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (business_id, entry_type)
		DO UPDATE SET next_value = reference_sequences.next_value + 1
		RETURNING next_value;
	`
	var seq int64
	if err := tx.QueryRow(ctx, query, businessID, string(entryType)).Scan(&seq); err != nil {
		return "", fmt.Errorf("failed to claim reference sequence for %s/%s: %w", businessID, entryType, err)
	}
	return reference.Format(entryType, seq), nil
}

// insertTransactionInTx persists a transaction with its lines and postings and
// applies the balance deltas, all on the supplied database transaction. The
// returned copy carries the assigned reference.
func (r *PgxLedgerRepository) insertTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction, balanceChanges map[string]decimal.Decimal) (*domain.Transaction, error) {
	transactionID, err := r.nextReference(ctx, tx, txn.BusinessID, txn.EntryType)
	if err != nil {
		return nil, err
	}
	txn.TransactionID = transactionID
	for i := range txn.Lines {
		txn.Lines[i].TransactionID = transactionID
	}

	// 1. Insert the transaction header.
	m := mapping.ToModelTransaction(txn)
	headerQuery := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err = tx.Exec(ctx, headerQuery,
		m.TransactionID,
		m.BusinessID,
		m.EntryType,
		m.Description,
		m.TotalAmount,
		m.Status,
		m.ReversalOf,
		m.ReversedBy,
		m.IdempotencyKey,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicate, m.TransactionID)
		}
		return nil, fmt.Errorf("failed to insert transaction %s: %w", m.TransactionID, err)
	}

	// 2. Lock the affected accounts and capture their pre-posting balances.
	codes := make([]string, 0, len(balanceChanges))
	for code := range balanceChanges {
		codes = append(codes, code)
	}
	lockedAccounts, err := r.accountRepo.FindAccountsByCodesForUpdate(ctx, tx, txn.BusinessID, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts for update: %w", err)
	}

	// 3. Apply the balance deltas.
	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, txn.BusinessID, balanceChanges, txn.CreatedBy, txn.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to update account balances: %w", err)
	}

	// 4. Insert entry lines.
	lineBatch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO entry_lines (line_id, transaction_id, business_id, line_date, debit_account_code, credit_account_code, amount, description, reference, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	for _, line := range txn.Lines {
		ml := mapping.ToModelEntryLine(line, txn.BusinessID)
		lineBatch.Queue(lineQuery,
			ml.LineID,
			ml.TransactionID,
			ml.BusinessID,
			ml.LineDate,
			ml.DebitAccountCode,
			ml.CreditAccountCode,
			ml.Amount,
			ml.Description,
			ml.Reference,
			ml.CreatedAt,
			ml.CreatedBy,
			ml.LastUpdatedAt,
			ml.LastUpdatedBy,
		)
	}
	if err := tx.SendBatch(ctx, lineBatch).Close(); err != nil {
		return nil, fmt.Errorf("failed to insert entry lines for transaction %s: %w", m.TransactionID, err)
	}

	// 5. Project each line into two postings with per-account running balances,
	// seeded from the balances captured under the row locks.
	runningBalances := make(map[string]decimal.Decimal, len(lockedAccounts))
	for code, acc := range lockedAccounts {
		runningBalances[code] = acc.Balance
	}

	postingBatch := &pgx.Batch{}
	postingQuery := `
		INSERT INTO postings (posting_id, transaction_id, business_id, account_code, side, amount, signed_amount, running_balance, posted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	queuePosting := func(accountCode string, side domain.PostingSide, amount decimal.Decimal) error {
		acc, ok := lockedAccounts[accountCode]
		if !ok {
			return fmt.Errorf("internal error: locked account %s missing during posting projection", accountCode)
		}
		signed, err := accounting.SignedAmount(side, acc.AccountType, amount)
		if err != nil {
			return err
		}
		newBalance := runningBalances[accountCode].Add(signed)
		runningBalances[accountCode] = newBalance
		postingBatch.Queue(postingQuery,
			uuid.NewString(),
			transactionID,
			txn.BusinessID,
			accountCode,
			string(side),
			amount,
			signed,
			newBalance,
			txn.CreatedAt,
		)
		return nil
	}
	for _, line := range txn.Lines {
		if err := queuePosting(line.DebitAccountCode, domain.Debit, line.Amount); err != nil {
			return nil, err
		}
		if err := queuePosting(line.CreditAccountCode, domain.Credit, line.Amount); err != nil {
			return nil, err
		}
	}
	if err := tx.SendBatch(ctx, postingBatch).Close(); err != nil {
		return nil, fmt.Errorf("failed to insert postings for transaction %s: %w", m.TransactionID, err)
	}

	return &txn, nil
}

// CreateTransaction atomically posts a transaction: reference assignment,
// header, lines, postings and balance updates commit or roll back together.
func (r *PgxLedgerRepository) CreateTransaction(ctx context.Context, txn domain.Transaction, balanceChanges map[string]decimal.Decimal) (*domain.Transaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	posted, err := r.insertTransactionInTx(ctx, tx, txn, balanceChanges)
	if err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return posted, nil
}

// CreateReversal posts the reversing transaction and flips the original to
// Reversed in the same database transaction. A concurrent reversal of the
// same original loses on the status guard and gets a conflict.
func (r *PgxLedgerRepository) CreateReversal(ctx context.Context, reversing domain.Transaction, balanceChanges map[string]decimal.Decimal, originalID string) (*domain.Transaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	posted, err := r.insertTransactionInTx(ctx, tx, reversing, balanceChanges)
	if err != nil {
		return nil, err
	}

	updateQuery := `
		UPDATE transactions
		SET status = $4, reversed_by = $3, last_updated_at = $5, last_updated_by = $6
		WHERE business_id = $1 AND transaction_id = $2 AND status = $7;
	`
	cmdTag, err := tx.Exec(ctx, updateQuery,
		reversing.BusinessID,
		originalID,
		posted.TransactionID,
		string(models.Reversed),
		reversing.CreatedAt,
		reversing.CreatedBy,
		string(models.Posted),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark transaction %s as reversed: %w", originalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: transaction %s is not in a reversible state", apperrors.ErrConflict, originalID)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return posted, nil
}

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.BusinessID,
		&m.EntryType,
		&m.Description,
		&m.TotalAmount,
		&m.Status,
		&m.ReversalOf,
		&m.ReversedBy,
		&m.IdempotencyKey,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindTransactionByID retrieves a transaction by its document reference.
func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, businessID string, transactionID string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE business_id = $1 AND transaction_id = $2;
	`
	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, businessID, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}

	d := mapping.ToDomainTransaction(m)
	return &d, nil
}

// FindTransactionByIdempotencyKey retrieves the transaction previously posted
// under the given idempotency key, if any.
func (r *PgxLedgerRepository) FindTransactionByIdempotencyKey(ctx context.Context, businessID string, key string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE business_id = $1 AND idempotency_key = $2;
	`
	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, businessID, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by idempotency key: %w", err)
	}

	d := mapping.ToDomainTransaction(m)
	return &d, nil
}

// FindLinesByTransactionID retrieves all entry lines of a transaction.
func (r *PgxLedgerRepository) FindLinesByTransactionID(ctx context.Context, businessID string, transactionID string) ([]domain.EntryLine, error) {
	query := `
		SELECT line_id, transaction_id, business_id, line_date, debit_account_code, credit_account_code, amount, description, reference, created_at, created_by, last_updated_at, last_updated_by
		FROM entry_lines
		WHERE business_id = $1 AND transaction_id = $2
		ORDER BY line_date, line_id;
	`
	rows, err := r.Pool.Query(ctx, query, businessID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entry lines for transaction %s: %w", transactionID, err)
	}
	defer rows.Close()

	lines := []models.EntryLine{}
	for rows.Next() {
		var l models.EntryLine
		err := rows.Scan(
			&l.LineID,
			&l.TransactionID,
			&l.BusinessID,
			&l.LineDate,
			&l.DebitAccountCode,
			&l.CreditAccountCode,
			&l.Amount,
			&l.Description,
			&l.Reference,
			&l.CreatedAt,
			&l.CreatedBy,
			&l.LastUpdatedAt,
			&l.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry line row for transaction %s: %w", transactionID, err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry line rows for transaction %s: %w", transactionID, err)
	}

	return mapping.ToDomainEntryLineSlice(lines), nil
}

// ListTransactions retrieves a paginated list of transactions for a business
// using token-based pagination over (created_at, transaction_id).
func (r *PgxLedgerRepository) ListTransactions(ctx context.Context, businessID string, filter portsrepo.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to determine if there's a next page.
	fetchLimit := limit + 1

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE business_id = $1
	`
	args := []interface{}{businessID}

	if filter.EntryType != nil {
		args = append(args, string(*filter.EntryType))
		query += ` AND entry_type = $` + strconv.Itoa(len(args))
	}
	if filter.FromDate != nil {
		args = append(args, *filter.FromDate)
		query += ` AND created_at >= $` + strconv.Itoa(len(args))
	}
	if filter.ToDate != nil {
		args = append(args, *filter.ToDate)
		query += ` AND created_at <= $` + strconv.Itoa(len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := strconv.Itoa(len(args))
		query += ` AND (description ILIKE $` + n + ` OR transaction_id ILIKE $` + n + `)`
	}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		args = append(args, lastCreatedAt)
		createdIdx := strconv.Itoa(len(args))
		args = append(args, lastID)
		idIdx := strconv.Itoa(len(args))
		query += ` AND (created_at, transaction_id) < ($` + createdIdx + `, $` + idIdx + `)`
	}

	args = append(args, fetchLimit)
	query += ` ORDER BY created_at DESC, transaction_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transactions for business %s: %w", businessID, err)
	}
	defer rows.Close()

	modelTxns := make([]models.Transaction, 0, fetchLimit)
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		modelTxns = append(modelTxns, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	var nextTokenVal *string
	if len(modelTxns) > limit {
		last := modelTxns[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		nextTokenVal = &token
		modelTxns = modelTxns[:limit]
	}

	return mapping.ToDomainTransactionSlice(modelTxns), nextTokenVal, nil
}

// ListPostingsByAccount retrieves a paginated ledger history for one account
// with running balances, newest first.
func (r *PgxLedgerRepository) ListPostingsByAccount(ctx context.Context, businessID string, accountCode string, limit int, nextToken *string) ([]domain.Posting, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `
		SELECT p.posting_id, p.transaction_id, p.business_id, p.account_code, p.side, p.amount, p.signed_amount, p.running_balance, p.posted_at, t.description, t.entry_type
		FROM postings p
		JOIN transactions t ON p.transaction_id = t.transaction_id AND p.business_id = t.business_id
		WHERE p.business_id = $1 AND p.account_code = $2
	`
	args := []interface{}{businessID, accountCode}

	if nextToken != nil && *nextToken != "" {
		lastPostedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		args = append(args, lastPostedAt)
		postedIdx := strconv.Itoa(len(args))
		args = append(args, lastID)
		idIdx := strconv.Itoa(len(args))
		query += ` AND (p.posted_at, p.posting_id) < ($` + postedIdx + `, $` + idIdx + `)`
	}

	args = append(args, fetchLimit)
	query += ` ORDER BY p.posted_at DESC, p.posting_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query postings for account %s: %w", accountCode, err)
	}
	defer rows.Close()

	type postingRow struct {
		posting     models.Posting
		description string
		entryType   string
	}
	postingRows := make([]postingRow, 0, fetchLimit)
	for rows.Next() {
		var pr postingRow
		err := rows.Scan(
			&pr.posting.PostingID,
			&pr.posting.TransactionID,
			&pr.posting.BusinessID,
			&pr.posting.AccountCode,
			&pr.posting.Side,
			&pr.posting.Amount,
			&pr.posting.SignedAmount,
			&pr.posting.RunningBalance,
			&pr.posting.PostedAt,
			&pr.description,
			&pr.entryType,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan posting row for account %s: %w", accountCode, err)
		}
		postingRows = append(postingRows, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating posting rows for account %s: %w", accountCode, err)
	}

	var nextTokenVal *string
	if len(postingRows) > limit {
		last := postingRows[limit-1]
		token := pagination.EncodeToken(last.posting.PostedAt, last.posting.PostingID)
		nextTokenVal = &token
		postingRows = postingRows[:limit]
	}

	postings := make([]domain.Posting, len(postingRows))
	for i, pr := range postingRows {
		p := mapping.ToDomainPosting(pr.posting)
		p.TransactionDescription = pr.description
		p.EntryType = domain.EntryType(pr.entryType)
		postings[i] = p
	}
	return postings, nextTokenVal, nil
}
