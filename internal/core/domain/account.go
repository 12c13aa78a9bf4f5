package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account represents one entry in a business's chart of accounts. Accounts are
// referenced everywhere by their business-scoped code (e.g. "10100"), never by
// the surrogate id.
type Account struct {
	AccountID   string      `json:"accountID"`  // Primary key (UUID)
	BusinessID  string      `json:"businessID"` // FK -> businesses.business_id
	Code        string      `json:"code"`       // Unique within the business
	Name        string      `json:"name"`
	AccountType AccountType `json:"accountType"`
	// Postable is false for system-managed control accounts; manual entries
	// may only touch postable accounts.
	Postable    bool            `json:"postable"`
	Description string          `json:"description"`
	IsActive    bool            `json:"isActive"`
	Balance     decimal.Decimal `json:"balance"` // Maintained running balance
	AuditFields
}
