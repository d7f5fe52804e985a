package account

import (
	"context"
	"fmt"

	"github.com/creatorhub/token-ledger/internal/domain/entity"
	errs "github.com/creatorhub/token-ledger/internal/domain/error"
)

// CreditPurchase credits tokens bought through an external payment flow.
// The balance change and the `purchase` ledger entry land in one unit of
// work; TotalPurchased advances by the credited amount.
func (s *Service) CreditPurchase(ctx context.Context, accountID string, amount int64, referenceID string) (*BalanceSnapshot, error) {
	return s.credit(ctx, accountID, amount, referenceID, entity.KindPurchase)
}

// Refund returns previously spent tokens with an audited `refund` entry.
// This is the only sanctioned out-of-band balance adjustment.
func (s *Service) Refund(ctx context.Context, accountID string, amount int64, referenceID string) (*BalanceSnapshot, error) {
	return s.credit(ctx, accountID, amount, referenceID, entity.KindRefund)
}

func (s *Service) credit(ctx context.Context, accountID string, amount int64, referenceID string, kind entity.EntryKind) (*BalanceSnapshot, error) {
	if accountID == "" {
		return nil, errs.ErrInvalidAccountID
	}
	if amount <= 0 {
		return nil, errs.ErrInvalidAmount
	}

	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrStorage, err.Error())
	}

	snapshot, err := s.creditInTx(txCtx, accountID, amount, referenceID, kind)
	if err != nil {
		if rbErr := s.uow.Rollback(txCtx); rbErr != nil {
			s.logger.Error("Rollback failed after credit error", map[string]any{
				"account_id": accountID,
				"error":      rbErr.Error(),
			})
		}
		return nil, err
	}

	if err := s.uow.Commit(txCtx); err != nil {
		s.logger.Error("Failed to commit credit", map[string]any{
			"account_id":   accountID,
			"amount":       amount,
			"kind":         string(kind),
			"reference_id": referenceID,
			"error":        err.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrStorage, err.Error())
	}

	s.logger.Info("Account credited", map[string]any{
		"account_id":   accountID,
		"amount":       amount,
		"kind":         string(kind),
		"reference_id": referenceID,
		"balance":      snapshot.Balance,
	})

	return snapshot, nil
}

func (s *Service) creditInTx(txCtx context.Context, accountID string, amount int64, referenceID string, kind entity.EntryKind) (*BalanceSnapshot, error) {
	accounts := s.uow.GetAccountRepository(txCtx)

	acct, err := accounts.GetForUpdate(txCtx, accountID)
	if err != nil {
		return nil, err
	}

	switch kind {
	case entity.KindRefund:
		err = acct.CreditRefund(amount, s.timeProvider)
	default:
		err = acct.CreditPurchased(amount, s.timeProvider)
	}
	if err != nil {
		return nil, err
	}

	entry, err := entity.NewLedgerEntry(accountID, amount, kind, referenceID, s.timeProvider)
	if err != nil {
		return nil, err
	}

	if err := s.uow.GetEntryRepository(txCtx).Append(txCtx, entry); err != nil {
		return nil, err
	}
	if err := accounts.Save(txCtx, acct); err != nil {
		return nil, err
	}

	return snapshotOf(acct), nil
}
