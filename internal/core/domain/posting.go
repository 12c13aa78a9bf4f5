package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PostingSide indicates which side of an entry line a posting came from.
type PostingSide string

const (
	Debit  PostingSide = "DEBIT"
	Credit PostingSide = "CREDIT"
)

// Posting is the per-account projection of an entry line: each line produces
// exactly two postings, one for the debit account and one for the credit
// account. Postings carry the running balance of their account at the moment
// they were applied and back the account ledger drill-down view.
type Posting struct {
	PostingID      string          `json:"postingID"` // Primary key (UUID)
	TransactionID  string          `json:"transactionID"`
	BusinessID     string          `json:"businessID"`
	AccountCode    string          `json:"accountCode"`
	Side           PostingSide     `json:"side"`
	Amount         decimal.Decimal `json:"amount"`       // Positive line amount
	SignedAmount   decimal.Decimal `json:"signedAmount"` // Amount with the normal-balance sign applied
	RunningBalance decimal.Decimal `json:"runningBalance"`
	PostedAt       time.Time       `json:"postedAt"`
	// Populated on account-history reads for display.
	TransactionDescription string    `json:"transactionDescription,omitempty"`
	EntryType              EntryType `json:"entryType,omitempty"`
}
