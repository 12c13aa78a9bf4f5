package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType categorizes where a ledger transaction originated.
type EntryType string

const (
	EntryManual      EntryType = "MANUAL"
	EntrySale        EntryType = "SALE"
	EntryPurchase    EntryType = "PURCHASE"
	EntryPayment     EntryType = "PAYMENT"
	EntryCashReceipt EntryType = "CASH_RECEIPT"
)

// Valid reports whether t is a known entry type.
func (t EntryType) Valid() bool {
	switch t {
	case EntryManual, EntrySale, EntryPurchase, EntryPayment, EntryCashReceipt:
		return true
	}
	return false
}

// Reversible reports whether transactions of this type may be reversed.
// Only manual journals and payments are exposed for reversal; sale, purchase
// and cash-receipt entries are corrected through their source documents.
func (t EntryType) Reversible() bool {
	return t == EntryManual || t == EntryPayment
}

// TransactionStatus indicates the state of a posted transaction.
type TransactionStatus string

const (
	Posted   TransactionStatus = "POSTED"
	Reversed TransactionStatus = "REVERSED"
)

// EntryLine is a single balanced debit/credit pair within a transaction.
type EntryLine struct {
	LineID            string          `json:"lineID"`        // Primary key (UUID)
	TransactionID     string          `json:"transactionID"` // FK -> transactions.transaction_id
	LineDate          time.Time       `json:"lineDate"`
	DebitAccountCode  string          `json:"debitAccount"`
	CreditAccountCode string          `json:"creditAccount"`
	Amount            decimal.Decimal `json:"amount"` // Always positive
	Description       string          `json:"description"`
	Reference         string          `json:"reference"` // Free-form document reference
	AuditFields
}

// Transaction is an immutable, balanced ledger event identified by a
// sequential typed reference such as "JNL-0001". Once posted, the only
// permitted state change is the one-shot transition to Reversed.
type Transaction struct {
	TransactionID string            `json:"transactionID"` // Generated reference, unique per business
	BusinessID    string            `json:"businessID"`
	EntryType     EntryType         `json:"entryType"`
	Description   string            `json:"description"`
	TotalAmount   decimal.Decimal   `json:"totalAmount"` // Sum of the debit column
	Status        TransactionStatus `json:"status"`
	// ReversalOf points at the transaction this one offsets; set only on
	// reversing transactions.
	ReversalOf *string `json:"reversalOf,omitempty"`
	// ReversedBy points at the transaction that offset this one; set only
	// when Status is Reversed.
	ReversedBy     *string     `json:"reversedBy,omitempty"`
	IdempotencyKey *string     `json:"-"`
	Lines          []EntryLine `json:"lines,omitempty"`
	AuditFields
}

// IsReversed reports whether the transaction has been offset by a reversal.
func (t *Transaction) IsReversed() bool {
	return t.Status == Reversed
}

// IsReversal reports whether the transaction itself offsets another one.
func (t *Transaction) IsReversal() bool {
	return t.ReversalOf != nil
}
