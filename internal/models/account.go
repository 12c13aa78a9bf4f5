package models

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

// Account represents a row of the accounts table.
type Account struct {
	AccountID   string          `db:"account_id"`
	BusinessID  string          `db:"business_id"`
	Code        string          `db:"code"` // Unique per business
	Name        string          `db:"name"`
	AccountType AccountType     `db:"account_type"`
	Postable    bool            `db:"postable"`
	Description string          `db:"description"`
	IsActive    bool            `db:"is_active"`
	Balance     decimal.Decimal `db:"balance"` // Persisted running balance
	AuditFields
}
