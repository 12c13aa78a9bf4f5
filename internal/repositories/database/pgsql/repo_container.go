package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/keepon-app/keepon-ledger/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	ledgerRepo := newPgxLedgerRepository(dbPool, accountRepo)
	businessRepo := newPgxBusinessRepository(dbPool)
	reportingRepo := newPgxReportingRepository(dbPool)
	apiKeyRepo := newPgxAPIKeyRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:   accountRepo,
		LedgerRepo:    ledgerRepo,
		BusinessRepo:  businessRepo,
		ReportingRepo: reportingRepo,
		APIKeyRepo:    apiKeyRepo,
	}
}
