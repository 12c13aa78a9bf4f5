package services

import (
	portsrepo "github.com/keepon-app/keepon-ledger/internal/core/ports/repositories"
	portssvc "github.com/keepon-app/keepon-ledger/internal/core/ports/services"
	"github.com/keepon-app/keepon-ledger/internal/platform/config"
)

// NewServiceContainer wires the application services with their repositories.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	// Create the container structure first
	container := &portssvc.ServiceContainer{}

	// Initialize business service first since other services depend on it
	container.Business = NewBusinessService(repos.BusinessRepo)

	businessAuthorizer := container.Business.(portssvc.BusinessAuthorizerSvc)

	container.Account = NewAccountService(repos.AccountRepo, container.Business, cfg.ControlAccountCodes)
	container.Ledger = NewLedgerService(repos.LedgerRepo, container.Account, container.Business)
	container.Reporting = NewReportingService(repos.ReportingRepo, businessAuthorizer)
	container.APIKey = NewAPIKeyService(repos.APIKeyRepo, businessAuthorizer)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade  = (*accountService)(nil)
	_ portssvc.LedgerSvcFacade   = (*ledgerService)(nil)
	_ portssvc.BusinessSvcFacade = (*businessService)(nil)
	_ portssvc.ReportingService  = (*reportingService)(nil)
	_ portssvc.APIKeySvc         = (*apiKeyService)(nil)
)
