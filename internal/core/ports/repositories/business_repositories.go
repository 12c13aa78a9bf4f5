package repositories

import (
	"context"

	"github.com/keepon-app/keepon-ledger/internal/core/domain"
)

// BusinessReader defines read operations for business data
type BusinessReader interface {
	// FindBusinessByID retrieves a specific business by its unique identifier.
	FindBusinessByID(ctx context.Context, businessID string) (*domain.Business, error)

	// ListBusinessesByUser retrieves the businesses a user belongs to.
	ListBusinessesByUser(ctx context.Context, userID string) ([]domain.Business, error)

	// FindUserBusinessRole retrieves the membership of a user in a business.
	FindUserBusinessRole(ctx context.Context, userID string, businessID string) (*domain.UserBusiness, error)
}

// BusinessWriter defines write operations for business data
type BusinessWriter interface {
	// SaveBusiness persists a new business and the creator's admin membership.
	SaveBusiness(ctx context.Context, business domain.Business, creatorMembership domain.UserBusiness) error

	// UpdateBusiness updates an existing business's details.
	UpdateBusiness(ctx context.Context, business domain.Business) error

	// UpsertUserBusinessRole inserts or updates a user's role in a business.
	UpsertUserBusinessRole(ctx context.Context, membership domain.UserBusiness) error
}

// BusinessRepositoryFacade combines all business-related repository interfaces
type BusinessRepositoryFacade interface {
	BusinessReader
	BusinessWriter
}
