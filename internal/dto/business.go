package dto

import (
	"time"

	"github.com/keepon-app/keepon-ledger/internal/core/domain"
)

// CreateBusinessRequest defines the data needed to create a new business.
type CreateBusinessRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateBusinessRequest defines the data allowed for updating a business.
type UpdateBusinessRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// AddUserToBusinessRequest defines the data needed to add a member.
type AddUserToBusinessRequest struct {
	UserID string              `json:"userID" binding:"required"`
	Role   domain.BusinessRole `json:"role" binding:"required,oneof=ADMIN MEMBER READONLY"`
}

// UpdateUserRoleRequest defines the data needed to change a member's role.
type UpdateUserRoleRequest struct {
	Role domain.BusinessRole `json:"role" binding:"required,oneof=ADMIN MEMBER READONLY REMOVED"`
}

// BusinessResponse defines the data returned for a business.
type BusinessResponse struct {
	BusinessID  string    `json:"businessID"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToBusinessResponse converts a domain.Business to BusinessResponse DTO.
func ToBusinessResponse(b *domain.Business) BusinessResponse {
	return BusinessResponse{
		BusinessID:  b.BusinessID,
		Name:        b.Name,
		Description: b.Description,
		IsActive:    b.IsActive,
		CreatedAt:   b.CreatedAt,
	}
}

// ToBusinessResponses converts a slice of domain.Business to []BusinessResponse.
func ToBusinessResponses(bs []domain.Business) []BusinessResponse {
	responses := make([]BusinessResponse, len(bs))
	for i, b := range bs {
		responses[i] = ToBusinessResponse(&b)
	}
	return responses
}
