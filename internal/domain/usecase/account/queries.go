package account

import (
	"context"

	"github.com/creatorhub/token-ledger/internal/domain/entity"
	errs "github.com/creatorhub/token-ledger/internal/domain/error"
)

const defaultStatementLimit = 50

// GetBalance returns the account's current balance and aggregate counters
func (s *Service) GetBalance(ctx context.Context, accountID string) (*BalanceSnapshot, error) {
	if accountID == "" {
		return nil, errs.ErrInvalidAccountID
	}

	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Balance retrieved", map[string]any{
		"account_id": accountID,
		"balance":    acct.Balance(),
	})

	return snapshotOf(acct), nil
}

// EnsureAccount idempotently creates a zero-balance account. Used on first
// login; concurrent calls for the same ID leave exactly one row.
func (s *Service) EnsureAccount(ctx context.Context, accountID string) error {
	if accountID == "" {
		return errs.ErrInvalidAccountID
	}

	if err := s.accounts.Ensure(ctx, accountID); err != nil {
		return err
	}

	s.logger.Debug("Account ensured", map[string]any{
		"account_id": accountID,
	})
	return nil
}

// GetStatement returns the account's most recent ledger entries, newest
// first. A non-positive limit falls back to the default page size.
func (s *Service) GetStatement(ctx context.Context, accountID string, limit int) ([]*entity.LedgerEntry, error) {
	if accountID == "" {
		return nil, errs.ErrInvalidAccountID
	}
	if limit <= 0 {
		limit = defaultStatementLimit
	}

	// Surface ErrAccountNotFound for unknown accounts rather than an empty page
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	return s.entries.ListByAccount(ctx, accountID, limit)
}

// Reconcile verifies the auditability contract: the account balance equals
// the sum of its ledger entry amounts.
func (s *Service) Reconcile(ctx context.Context, accountID string) (*ReconciliationReport, error) {
	if accountID == "" {
		return nil, errs.ErrInvalidAccountID
	}

	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	sum, err := s.entries.SumByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		AccountID:  accountID,
		Balance:    acct.Balance(),
		EntrySum:   sum,
		Reconciled: acct.Balance() == sum,
	}

	if !report.Reconciled {
		s.logger.Error("Account failed reconciliation", map[string]any{
			"account_id": accountID,
			"balance":    report.Balance,
			"entry_sum":  report.EntrySum,
		})
	}

	return report, nil
}

func snapshotOf(acct *entity.Account) *BalanceSnapshot {
	return &BalanceSnapshot{
		AccountID:      acct.ID,
		Balance:        acct.Balance(),
		TotalEarned:    acct.TotalEarned,
		TotalSpent:     acct.TotalSpent,
		TotalPurchased: acct.TotalPurchased,
		UpdatedAt:      acct.UpdatedAt,
	}
}
