package dto

import (
	"github.com/shopspring/decimal"

	"github.com/keepon-app/keepon-ledger/internal/core/domain"
)

// TrialBalanceResponse wraps the rows of a trial balance report together with
// the column totals, which must agree for a consistent ledger.
type TrialBalanceResponse struct {
	Rows        []domain.TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal          `json:"totalDebit"`
	TotalCredit decimal.Decimal          `json:"totalCredit"`
}

// ToTrialBalanceResponse computes column totals over the report rows.
func ToTrialBalanceResponse(rows []domain.TrialBalanceRow) TrialBalanceResponse {
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, r := range rows {
		totalDebit = totalDebit.Add(r.Debit)
		totalCredit = totalCredit.Add(r.Credit)
	}
	return TrialBalanceResponse{
		Rows:        rows,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
	}
}
