package domain

import "time"

// Business represents an isolated tenant owning a chart of accounts and a ledger.
type Business struct {
	BusinessID  string `json:"businessID"` // Primary key (UUID)
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
	AuditFields
}

// BusinessRole defines the possible roles a user can have within a business.
type BusinessRole string

const (
	RoleAdmin    BusinessRole = "ADMIN"
	RoleMember   BusinessRole = "MEMBER"
	RoleReadOnly BusinessRole = "READONLY"
	RoleRemoved  BusinessRole = "REMOVED"
)

// Allows reports whether a holder of r may act at the level required.
// Admin > Member > ReadOnly; Removed allows nothing.
func (r BusinessRole) Allows(required BusinessRole) bool {
	rank := func(role BusinessRole) int {
		switch role {
		case RoleAdmin:
			return 3
		case RoleMember:
			return 2
		case RoleReadOnly:
			return 1
		default:
			return 0
		}
	}
	return rank(r) >= rank(required) && rank(r) > 0
}

// UserBusiness represents the membership of a user in a business.
type UserBusiness struct {
	UserID     string       `json:"userID"`
	BusinessID string       `json:"businessID"`
	Role       BusinessRole `json:"role"`
	JoinedAt   time.Time    `json:"joinedAt"`
}
