package services

import (
	"context"
	"time"

	"github.com/keepon-app/keepon-ledger/internal/core/domain"
)

// ReportingService defines operations for generating financial reports
type ReportingService interface {
	// TrialBalance generates a trial balance report as of a specific date
	TrialBalance(ctx context.Context, businessID string, asOf time.Time, userID string) ([]domain.TrialBalanceRow, error)

	// ProfitAndLoss generates a profit and loss report for a specific period
	ProfitAndLoss(ctx context.Context, businessID string, from, to time.Time, userID string) (*domain.PAndLReport, error)
}
