package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus indicates the state of a posted transaction.
type TransactionStatus string

const (
	Posted   TransactionStatus = "POSTED"
	Reversed TransactionStatus = "REVERSED"
)

// PostingSide indicates whether a posting row is a Debit or a Credit.
type PostingSide string

const (
	Debit  PostingSide = "DEBIT"
	Credit PostingSide = "CREDIT"
)

// Transaction represents a row of the transactions table. The primary key is
// the generated document reference (e.g. "JNL-0001"), scoped to a business.
type Transaction struct {
	TransactionID  string            `db:"transaction_id"`
	BusinessID     string            `db:"business_id"`
	EntryType      string            `db:"entry_type"`
	Description    string            `db:"description"`
	TotalAmount    decimal.Decimal   `db:"total_amount"`
	Status         TransactionStatus `db:"status"`
	ReversalOf     *string           `db:"reversal_of"` // Nullable self-FK
	ReversedBy     *string           `db:"reversed_by"` // Nullable self-FK
	IdempotencyKey *string           `db:"idempotency_key"`
	AuditFields
}

// EntryLine represents a row of the entry_lines table: one debit/credit pair.
type EntryLine struct {
	LineID            string          `db:"line_id"`
	TransactionID     string          `db:"transaction_id"`
	BusinessID        string          `db:"business_id"`
	LineDate          time.Time       `db:"line_date"`
	DebitAccountCode  string          `db:"debit_account_code"`
	CreditAccountCode string          `db:"credit_account_code"`
	Amount            decimal.Decimal `db:"amount"`
	Description       string          `db:"description"`
	Reference         string          `db:"reference"`
	AuditFields
}

// Posting represents a row of the postings table: the per-account projection
// of an entry line, carrying the account's running balance at apply time.
type Posting struct {
	PostingID      string          `db:"posting_id"`
	TransactionID  string          `db:"transaction_id"`
	BusinessID     string          `db:"business_id"`
	AccountCode    string          `db:"account_code"`
	Side           PostingSide     `db:"side"`
	Amount         decimal.Decimal `db:"amount"`
	SignedAmount   decimal.Decimal `db:"signed_amount"`
	RunningBalance decimal.Decimal `db:"running_balance"`
	PostedAt       time.Time       `db:"posted_at"`
}
