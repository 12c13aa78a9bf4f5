package domain

import (
	"github.com/shopspring/decimal"
)

// TrialBalanceRow represents a single account row in a trial balance report.
type TrialBalanceRow struct {
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// AccountAmount represents an account with its net amount for financial reports.
type AccountAmount struct {
	AccountCode string          `json:"accountCode"`
	Name        string          `json:"name"`
	AccountType AccountType     `json:"accountType"`
	NetAmount   decimal.Decimal `json:"netAmount"`
}

// PAndLReport represents a profit and loss report over a period.
type PAndLReport struct {
	Revenue   []AccountAmount `json:"revenue"`
	Expenses  []AccountAmount `json:"expenses"`
	NetProfit decimal.Decimal `json:"netProfit"`
}
