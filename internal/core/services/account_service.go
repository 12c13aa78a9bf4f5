package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/keepon-app/keepon-ledger/internal/apperrors"
	"github.com/keepon-app/keepon-ledger/internal/core/domain"
	portsrepo "github.com/keepon-app/keepon-ledger/internal/core/ports/repositories"
	portssvc "github.com/keepon-app/keepon-ledger/internal/core/ports/services"
	"github.com/keepon-app/keepon-ledger/internal/dto"
	"github.com/keepon-app/keepon-ledger/internal/middleware"
)

// accountService provides chart-of-accounts operations.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	businessSvc portssvc.BusinessSvcFacade
	// controlCodes holds account codes that are system-managed; accounts
	// created with one of these codes are never postable by manual entries.
	controlCodes map[string]struct{}
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, businessSvc portssvc.BusinessSvcFacade, controlCodes []string) portssvc.AccountSvcFacade {
	codes := make(map[string]struct{}, len(controlCodes))
	for _, c := range controlCodes {
		codes[c] = struct{}{}
	}
	return &accountService{
		accountRepo:  accountRepo,
		businessSvc:  businessSvc,
		controlCodes: codes,
	}
}

// Ensure accountService implements the portssvc.AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) isControlCode(code string) bool {
	_, ok := s.controlCodes[code]
	return ok
}

// GetAccountByCode retrieves a specific account by its business-scoped code.
func (s *accountService) GetAccountByCode(ctx context.Context, businessID string, code string, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.businessSvc.AuthorizeUserAction(ctx, userID, businessID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByCode(ctx, businessID, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account by code", slog.String("error", err.Error()), slog.String("code", code))
		}
		return nil, err
	}
	return account, nil
}

// GetAccountsByCodes retrieves multiple accounts by their codes.
func (s *accountService) GetAccountsByCodes(ctx context.Context, businessID string, codes []string, userID string) (map[string]domain.Account, error) {
	if err := s.businessSvc.AuthorizeUserAction(ctx, userID, businessID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.accountRepo.FindAccountsByCodes(ctx, businessID, codes)
}

// ListAccounts retrieves the chart of accounts for a business.
func (s *accountService) ListAccounts(ctx context.Context, businessID string, userID string, params dto.ListAccountsParams) ([]domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.businessSvc.AuthorizeUserAction(ctx, userID, businessID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 100
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, businessID, limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list accounts", slog.String("error", err.Error()), slog.String("business_id", businessID))
		return nil, fmt.Errorf("failed to retrieve accounts: %w", err)
	}
	// An empty first page means the business has no chart of accounts at all;
	// an empty later page is just the end of the listing.
	if len(accounts) == 0 && params.Offset == 0 {
		return nil, fmt.Errorf("%w: business %s has no accounts", apperrors.ErrNotFound, businessID)
	}

	if params.PostableOnly {
		postable := accounts[:0]
		for _, acc := range accounts {
			if acc.Postable && acc.IsActive {
				postable = append(postable, acc)
			}
		}
		accounts = postable
	}
	return accounts, nil
}

// CreateAccount persists a new account. Requires member role.
func (s *accountService) CreateAccount(ctx context.Context, businessID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.businessSvc.AuthorizeUserAction(ctx, userID, businessID, domain.RoleMember); err != nil {
		logger.Warn("Authorization failed for CreateAccount", slog.String("user_id", userID), slog.String("business_id", businessID), slog.String("error", err.Error()))
		return nil, err
	}

	postable := true
	if req.Postable != nil {
		postable = *req.Postable
	}
	// Control accounts are maintained by the posting engine only.
	if s.isControlCode(req.Code) {
		postable = false
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:   uuid.NewString(),
		BusinessID:  businessID,
		Code:        req.Code,
		Name:        req.Name,
		AccountType: req.AccountType,
		Postable:    postable,
		Description: req.Description,
		IsActive:    true,
		Balance:     decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: account code %s already exists", apperrors.ErrConflict, req.Code)
		}
		logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created successfully", slog.String("code", account.Code), slog.String("business_id", businessID))
	return &account, nil
}

// UpdateAccount updates an existing account's details. Requires member role.
func (s *accountService) UpdateAccount(ctx context.Context, businessID string, code string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.businessSvc.AuthorizeUserAction(ctx, userID, businessID, domain.RoleMember); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByCode(ctx, businessID, code)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		account.Name = *req.Name
		updated = true
	}
	if req.Description != nil {
		account.Description = *req.Description
		updated = true
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
		updated = true
	}
	if !updated {
		return account, nil
	}

	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to update account", slog.String("error", err.Error()), slog.String("code", code))
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

// DeactivateAccount marks an account as inactive. Requires member role.
func (s *accountService) DeactivateAccount(ctx context.Context, businessID string, code string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.businessSvc.AuthorizeUserAction(ctx, userID, businessID, domain.RoleMember); err != nil {
		return err
	}

	account, err := s.accountRepo.FindAccountByCode(ctx, businessID, code)
	if err != nil {
		return err
	}
	if !account.Balance.IsZero() {
		return fmt.Errorf("%w: account %s has a non-zero balance", apperrors.ErrConflict, code)
	}

	if err := s.accountRepo.DeactivateAccount(ctx, businessID, code, userID, time.Now().UTC()); err != nil {
		logger.Error("Failed to deactivate account", slog.String("error", err.Error()), slog.String("code", code))
		return fmt.Errorf("failed to deactivate account: %w", err)
	}
	return nil
}
