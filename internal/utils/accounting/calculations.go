// Package accounting holds the pure double-entry arithmetic shared by the
// ledger service and the repositories: sign conventions, balance validation
// and balance-delta aggregation.
package accounting

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/keepon-app/keepon-ledger/internal/apperrors"
	"github.com/keepon-app/keepon-ledger/internal/core/domain"
)

// BalanceTolerance is the maximum absolute difference between the debit and
// credit columns of a balanced batch. Line amounts arrive as decimals, but
// callers may construct them from floats, so a small epsilon is allowed.
var BalanceTolerance = decimal.NewFromFloat(0.000001)

// SignedAmount returns the amount with the sign mandated by the account's
// normal balance: a debit increases asset and expense accounts and decreases
// liability, equity and revenue accounts; a credit does the opposite.
func SignedAmount(side domain.PostingSide, accountType domain.AccountType, amount decimal.Decimal) (decimal.Decimal, error) {
	debitPositive := false
	switch accountType {
	case domain.Asset, domain.Expense:
		debitPositive = true
	case domain.Liability, domain.Equity, domain.Revenue:
		debitPositive = false
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, accountType)
	}

	switch side {
	case domain.Debit:
		if debitPositive {
			return amount, nil
		}
		return amount.Neg(), nil
	case domain.Credit:
		if debitPositive {
			return amount.Neg(), nil
		}
		return amount, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown posting side %q", apperrors.ErrValidation, side)
	}
}

// ValidateEntryLines checks the structural rules for a batch of entry lines:
// the batch is non-empty, every amount is strictly positive, no line debits
// and credits the same account, and the debit and credit columns agree within
// BalanceTolerance. It does not touch storage; account existence checks are
// the caller's job.
func ValidateEntryLines(lines []domain.EntryLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: entry must contain at least one line", apperrors.ErrValidation)
	}

	debitTotal := decimal.Zero
	creditTotal := decimal.Zero
	for i, line := range lines {
		if strings.TrimSpace(line.DebitAccountCode) == "" {
			return fmt.Errorf("%w: line %d is missing a debit account", apperrors.ErrValidation, i+1)
		}
		if strings.TrimSpace(line.CreditAccountCode) == "" {
			return fmt.Errorf("%w: line %d is missing a credit account", apperrors.ErrValidation, i+1)
		}
		if line.DebitAccountCode == line.CreditAccountCode {
			return fmt.Errorf("%w: line %d debits and credits the same account %s", apperrors.ErrValidation, i+1, line.DebitAccountCode)
		}
		if !line.Amount.IsPositive() {
			return fmt.Errorf("%w: line %d amount must be positive, got %s", apperrors.ErrValidation, i+1, line.Amount)
		}
		debitTotal = debitTotal.Add(line.Amount)
		creditTotal = creditTotal.Add(line.Amount)
	}

	if debitTotal.Sub(creditTotal).Abs().GreaterThan(BalanceTolerance) {
		return fmt.Errorf("%w: entry is unbalanced: debits %s, credits %s", apperrors.ErrValidation, debitTotal, creditTotal)
	}
	return nil
}

// AccountCodes returns the distinct account codes referenced by lines, in
// first-seen order.
func AccountCodes(lines []domain.EntryLine) []string {
	seen := make(map[string]struct{}, len(lines)*2)
	codes := make([]string, 0, len(lines)*2)
	for _, line := range lines {
		for _, code := range []string{line.DebitAccountCode, line.CreditAccountCode} {
			if _, ok := seen[code]; !ok {
				seen[code] = struct{}{}
				codes = append(codes, code)
			}
		}
	}
	return codes
}

// BalanceChanges aggregates the net signed delta each account receives from
// the batch, keyed by account code. accountTypes must contain every account
// the lines reference.
func BalanceChanges(lines []domain.EntryLine, accountTypes map[string]domain.AccountType) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal)
	apply := func(code string, side domain.PostingSide, amount decimal.Decimal) error {
		accountType, ok := accountTypes[code]
		if !ok {
			return fmt.Errorf("%w: account %s not found", apperrors.ErrValidation, code)
		}
		signed, err := SignedAmount(side, accountType, amount)
		if err != nil {
			return err
		}
		changes[code] = changes[code].Add(signed)
		return nil
	}

	for _, line := range lines {
		if err := apply(line.DebitAccountCode, domain.Debit, line.Amount); err != nil {
			return nil, err
		}
		if err := apply(line.CreditAccountCode, domain.Credit, line.Amount); err != nil {
			return nil, err
		}
	}
	return changes, nil
}

// BatchTotal returns the sum of the debit column, used as the transaction's
// display total.
func BatchTotal(lines []domain.EntryLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Amount)
	}
	return total
}
