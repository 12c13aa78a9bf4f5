package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keepon-app/keepon-ledger/internal/core/domain"
	portsrepo "github.com/keepon-app/keepon-ledger/internal/core/ports/repositories"
)

type PgxReportingRepository struct {
	BaseRepository
}

// newPgxReportingRepository creates a new repository for report queries.
func newPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &PgxReportingRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxReportingRepository implements portsrepo.ReportingRepository
var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// GetTrialBalance aggregates posting totals per account as of a date. Debit
// and credit columns come straight from the posting sides, so the two column
// totals match whenever the underlying transactions balance.
func (r *PgxReportingRepository) GetTrialBalance(ctx context.Context, businessID string, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT
			a.code,
			a.name,
			a.account_type,
			COALESCE(SUM(p.amount) FILTER (WHERE p.side = 'DEBIT'), 0) AS total_debit,
			COALESCE(SUM(p.amount) FILTER (WHERE p.side = 'CREDIT'), 0) AS total_credit
		FROM accounts a
		LEFT JOIN postings p
			ON p.business_id = a.business_id AND p.account_code = a.code AND p.posted_at <= $2
		WHERE a.business_id = $1
		GROUP BY a.code, a.name, a.account_type
		ORDER BY a.code;
	`
	rows, err := r.Pool.Query(ctx, query, businessID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query trial balance for business %s: %w", businessID, err)
	}
	defer rows.Close()

	result := []domain.TrialBalanceRow{}
	for rows.Next() {
		var row domain.TrialBalanceRow
		var accountType string
		if err := rows.Scan(&row.AccountCode, &row.AccountName, &accountType, &row.Debit, &row.Credit); err != nil {
			return nil, fmt.Errorf("failed to scan trial balance row: %w", err)
		}
		row.AccountType = domain.AccountType(accountType)
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trial balance rows: %w", err)
	}

	return result, nil
}

// GetProfitAndLossData aggregates signed posting amounts for revenue and
// expense accounts over a period. The signed amounts already carry the
// account-type sign convention, so SUM gives the net movement directly.
func (r *PgxReportingRepository) GetProfitAndLossData(ctx context.Context, businessID string, from, to time.Time) ([]domain.AccountAmount, error) {
	query := `
		SELECT
			a.code,
			a.name,
			a.account_type,
			COALESCE(SUM(p.signed_amount), 0) AS net_amount
		FROM accounts a
		JOIN postings p
			ON p.business_id = a.business_id AND p.account_code = a.code
		WHERE a.business_id = $1
			AND a.account_type IN ('REVENUE', 'EXPENSE')
			AND p.posted_at >= $2 AND p.posted_at <= $3
		GROUP BY a.code, a.name, a.account_type
		ORDER BY a.code;
	`
	rows, err := r.Pool.Query(ctx, query, businessID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query profit and loss data for business %s: %w", businessID, err)
	}
	defer rows.Close()

	result := []domain.AccountAmount{}
	for rows.Next() {
		var row domain.AccountAmount
		var accountType string
		if err := rows.Scan(&row.AccountCode, &row.Name, &accountType, &row.NetAmount); err != nil {
			return nil, fmt.Errorf("failed to scan profit and loss row: %w", err)
		}
		row.AccountType = domain.AccountType(accountType)
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profit and loss rows: %w", err)
	}

	return result, nil
}
