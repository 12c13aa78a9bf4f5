package services

import (
	"context"

	"github.com/keepon-app/keepon-ledger/internal/core/domain"
)

// BusinessReaderSvc defines read operations for business data
type BusinessReaderSvc interface {
	// FindBusinessByID retrieves a specific business by its ID.
	FindBusinessByID(ctx context.Context, businessID string) (*domain.Business, error)

	// ListUserBusinesses retrieves the businesses a user belongs to.
	ListUserBusinesses(ctx context.Context, userID string) ([]domain.Business, error)
}

// BusinessWriterSvc defines write operations for business data
type BusinessWriterSvc interface {
	// CreateBusiness persists a new business with the creator as admin.
	CreateBusiness(ctx context.Context, name, description, creatorUserID string) (*domain.Business, error)

	// UpdateBusiness updates a business's details.
	UpdateBusiness(ctx context.Context, businessID, name, description, requestingUserID string) (*domain.Business, error)
}

// BusinessMembershipSvc defines operations for managing business membership
type BusinessMembershipSvc interface {
	// AddUserToBusiness adds a user to a business with a specific role.
	AddUserToBusiness(ctx context.Context, addingUserID, targetUserID, businessID string, role domain.BusinessRole) error

	// UpdateUserBusinessRole updates a user's role in a business.
	// Only business admins can update user roles.
	UpdateUserBusinessRole(ctx context.Context, requestingUserID, targetUserID, businessID string, newRole domain.BusinessRole) error
}

// BusinessAuthorizerSvc defines operations for business authorization
type BusinessAuthorizerSvc interface {
	// AuthorizeUserAction checks if a user has required permissions for a business.
	AuthorizeUserAction(ctx context.Context, userID, businessID string, requiredRole domain.BusinessRole) error
}

// BusinessSvcFacade combines all business-related service interfaces
// This is a facade for clients that need access to all operations
type BusinessSvcFacade interface {
	BusinessReaderSvc
	BusinessWriterSvc
	BusinessMembershipSvc
	BusinessAuthorizerSvc
}
