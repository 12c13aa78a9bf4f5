package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/keepon-app/keepon-ledger/internal/apperrors"
	"github.com/keepon-app/keepon-ledger/internal/core/domain"
	portsrepo "github.com/keepon-app/keepon-ledger/internal/core/ports/repositories"
	portssvc "github.com/keepon-app/keepon-ledger/internal/core/ports/services"
	"github.com/keepon-app/keepon-ledger/internal/middleware"
)

// businessService provides tenant and membership operations.
type businessService struct {
	businessRepo portsrepo.BusinessRepositoryFacade
}

// NewBusinessService creates a new BusinessService.
func NewBusinessService(businessRepo portsrepo.BusinessRepositoryFacade) portssvc.BusinessSvcFacade {
	return &businessService{businessRepo: businessRepo}
}

// Ensure businessService implements the portssvc.BusinessSvcFacade interface
var _ portssvc.BusinessSvcFacade = (*businessService)(nil)

// FindBusinessByID retrieves a specific business by its ID.
func (s *businessService) FindBusinessByID(ctx context.Context, businessID string) (*domain.Business, error) {
	business, err := s.businessRepo.FindBusinessByID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to find business %s: %w", businessID, err)
	}
	return business, nil
}

// ListUserBusinesses retrieves the businesses a user belongs to.
func (s *businessService) ListUserBusinesses(ctx context.Context, userID string) ([]domain.Business, error) {
	businesses, err := s.businessRepo.ListBusinessesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list businesses for user %s: %w", userID, err)
	}
	return businesses, nil
}

// CreateBusiness persists a new business with the creator as admin.
func (s *businessService) CreateBusiness(ctx context.Context, name, description, creatorUserID string) (*domain.Business, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if name == "" {
		return nil, fmt.Errorf("%w: business name is required", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	business := domain.Business{
		BusinessID:  uuid.NewString(),
		Name:        name,
		Description: description,
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	membership := domain.UserBusiness{
		UserID:     creatorUserID,
		BusinessID: business.BusinessID,
		Role:       domain.RoleAdmin,
		JoinedAt:   now,
	}

	if err := s.businessRepo.SaveBusiness(ctx, business, membership); err != nil {
		logger.Error("Failed to save business", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save business: %w", err)
	}

	logger.Info("Business created successfully", slog.String("business_id", business.BusinessID))
	return &business, nil
}

// UpdateBusiness updates a business's details. Requires admin role.
func (s *businessService) UpdateBusiness(ctx context.Context, businessID, name, description, requestingUserID string) (*domain.Business, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.AuthorizeUserAction(ctx, requestingUserID, businessID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	business, err := s.businessRepo.FindBusinessByID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		business.Name = name
	}
	if description != "" {
		business.Description = description
	}
	business.LastUpdatedAt = time.Now().UTC()
	business.LastUpdatedBy = requestingUserID

	if err := s.businessRepo.UpdateBusiness(ctx, *business); err != nil {
		logger.Error("Failed to update business", slog.String("error", err.Error()), slog.String("business_id", businessID))
		return nil, fmt.Errorf("failed to update business: %w", err)
	}
	return business, nil
}

// AddUserToBusiness adds a user to a business with a specific role.
func (s *businessService) AddUserToBusiness(ctx context.Context, addingUserID, targetUserID, businessID string, role domain.BusinessRole) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.AuthorizeUserAction(ctx, addingUserID, businessID, domain.RoleAdmin); err != nil {
		logger.Warn("Authorization failed for AddUserToBusiness", slog.String("user_id", addingUserID), slog.String("error", err.Error()))
		return err
	}

	if role == domain.RoleRemoved {
		return fmt.Errorf("%w: cannot add a user with the removed role", apperrors.ErrValidation)
	}

	membership := domain.UserBusiness{
		UserID:     targetUserID,
		BusinessID: businessID,
		Role:       role,
		JoinedAt:   time.Now().UTC(),
	}
	if err := s.businessRepo.UpsertUserBusinessRole(ctx, membership); err != nil {
		logger.Error("Failed to add user to business", slog.String("error", err.Error()), slog.String("business_id", businessID))
		return fmt.Errorf("failed to add user to business: %w", err)
	}

	logger.Info("User added to business", slog.String("target_user_id", targetUserID), slog.String("business_id", businessID), slog.String("role", string(role)))
	return nil
}

// UpdateUserBusinessRole updates a user's role in a business.
func (s *businessService) UpdateUserBusinessRole(ctx context.Context, requestingUserID, targetUserID, businessID string, newRole domain.BusinessRole) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.AuthorizeUserAction(ctx, requestingUserID, businessID, domain.RoleAdmin); err != nil {
		return err
	}

	if requestingUserID == targetUserID && newRole != domain.RoleAdmin {
		// An admin stepping down could leave the business without admins.
		return fmt.Errorf("%w: admins cannot change their own role", apperrors.ErrValidation)
	}

	membership := domain.UserBusiness{
		UserID:     targetUserID,
		BusinessID: businessID,
		Role:       newRole,
		JoinedAt:   time.Now().UTC(),
	}
	if err := s.businessRepo.UpsertUserBusinessRole(ctx, membership); err != nil {
		logger.Error("Failed to update user role", slog.String("error", err.Error()), slog.String("business_id", businessID))
		return fmt.Errorf("failed to update user role: %w", err)
	}
	return nil
}

// AuthorizeUserAction checks if a user has required permissions for a business.
// Returns ErrNotFound when the user has no membership at all (to obscure the
// business's existence) and ErrForbidden when the role is insufficient.
func (s *businessService) AuthorizeUserAction(ctx context.Context, userID, businessID string, requiredRole domain.BusinessRole) error {
	membership, err := s.businessRepo.FindUserBusinessRole(ctx, userID, businessID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to check business membership: %w", err)
	}
	if membership == nil || membership.Role == domain.RoleRemoved {
		return apperrors.ErrNotFound
	}
	if !membership.Role.Allows(requiredRole) {
		return fmt.Errorf("%w: role %s cannot perform this action", apperrors.ErrForbidden, membership.Role)
	}
	return nil
}
