package repositories

import (
	"context"
	"time"

	"github.com/keepon-app/keepon-ledger/internal/core/domain"
)

// ReportingRepository defines the read-model queries behind financial reports.
type ReportingRepository interface {
	// GetTrialBalance aggregates signed posting totals per account as of a date.
	GetTrialBalance(ctx context.Context, businessID string, asOf time.Time) ([]domain.TrialBalanceRow, error)

	// GetProfitAndLossData aggregates net amounts for revenue and expense
	// accounts over a period.
	GetProfitAndLossData(ctx context.Context, businessID string, from, to time.Time) ([]domain.AccountAmount, error)
}
