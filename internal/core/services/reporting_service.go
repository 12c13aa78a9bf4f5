package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/keepon-app/keepon-ledger/internal/apperrors"
	"github.com/keepon-app/keepon-ledger/internal/core/domain"
	portsrepo "github.com/keepon-app/keepon-ledger/internal/core/ports/repositories"
	portssvc "github.com/keepon-app/keepon-ledger/internal/core/ports/services"
)

// reportingService generates financial reports from the posting read model.
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
}

// NewReportingService creates a new ReportingService.
func NewReportingService(reportingRepo portsrepo.ReportingRepository, businessAuthorizer portssvc.BusinessAuthorizerSvc) portssvc.ReportingService {
	return &reportingService{
		BaseService:   BaseService{BusinessAuthorizer: businessAuthorizer},
		reportingRepo: reportingRepo,
	}
}

// Ensure reportingService implements the portssvc.ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// TrialBalance generates a trial balance report as of a specific date.
func (s *reportingService) TrialBalance(ctx context.Context, businessID string, asOf time.Time, userID string) ([]domain.TrialBalanceRow, error) {
	if err := s.AuthorizeUser(ctx, userID, businessID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	rows, err := s.reportingRepo.GetTrialBalance(ctx, businessID, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate trial balance", "business_id", businessID)
		return nil, fmt.Errorf("failed to generate trial balance: %w", err)
	}

	s.LogInfo(ctx, "Trial balance generated", "business_id", businessID, "rows", len(rows))
	return rows, nil
}

// ProfitAndLoss generates a profit and loss report for a specific period.
func (s *reportingService) ProfitAndLoss(ctx context.Context, businessID string, from, to time.Time, userID string) (*domain.PAndLReport, error) {
	if err := s.AuthorizeUser(ctx, userID, businessID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: report period end precedes its start", apperrors.ErrValidation)
	}

	amounts, err := s.reportingRepo.GetProfitAndLossData(ctx, businessID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch profit and loss data", "business_id", businessID)
		return nil, fmt.Errorf("failed to generate profit and loss report: %w", err)
	}

	report := &domain.PAndLReport{
		Revenue:   []domain.AccountAmount{},
		Expenses:  []domain.AccountAmount{},
		NetProfit: decimal.Zero,
	}

	revenueTotal := decimal.Zero
	expenseTotal := decimal.Zero
	for _, row := range amounts {
		if row.NetAmount.IsZero() {
			continue
		}
		switch row.AccountType {
		case domain.Revenue:
			report.Revenue = append(report.Revenue, row)
			revenueTotal = revenueTotal.Add(row.NetAmount)
		case domain.Expense:
			report.Expenses = append(report.Expenses, row)
			expenseTotal = expenseTotal.Add(row.NetAmount)
		}
	}
	report.NetProfit = revenueTotal.Sub(expenseTotal)

	s.LogInfo(ctx, "Profit and loss generated", "business_id", businessID, "net_profit", report.NetProfit.String())
	return report, nil
}
