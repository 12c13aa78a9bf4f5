package mapping

import (
	"github.com/keepon-app/keepon-ledger/internal/core/domain"
	"github.com/keepon-app/keepon-ledger/internal/models"
)

// ToModelBusiness converts a domain Business to a model Business
func ToModelBusiness(d domain.Business) models.Business {
	return models.Business{
		BusinessID:  d.BusinessID,
		Name:        d.Name,
		Description: d.Description,
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBusiness converts a model Business to a domain Business
func ToDomainBusiness(m models.Business) domain.Business {
	return domain.Business{
		BusinessID:  m.BusinessID,
		Name:        m.Name,
		Description: m.Description,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainUserBusiness converts a model UserBusiness to a domain UserBusiness
func ToDomainUserBusiness(m models.UserBusiness) domain.UserBusiness {
	return domain.UserBusiness{
		UserID:     m.UserID,
		BusinessID: m.BusinessID,
		Role:       domain.BusinessRole(m.Role),
		JoinedAt:   m.JoinedAt,
	}
}
