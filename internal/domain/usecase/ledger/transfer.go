package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/creatorhub/token-ledger/internal/domain/entity"
	errs "github.com/creatorhub/token-ledger/internal/domain/error"
	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
)

const feeBpsDenominator = 10000

// Transfer moves tokens from the payer to the payee as one atomic unit.
// The payer's balance check and debit happen under an exclusive lock on the
// payer's row, so concurrent transfers cannot open a double-spend window.
// Transfers touching disjoint account pairs proceed concurrently.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrStorage, err.Error())
	}

	result, err := s.TransferInTx(txCtx, req)
	if err != nil {
		if rbErr := s.uow.Rollback(txCtx); rbErr != nil {
			s.logger.Error("Rollback failed after transfer error", map[string]any{
				"payer_id": req.PayerID,
				"payee_id": req.PayeeID,
				"error":    rbErr.Error(),
			})
		}
		return nil, err
	}

	if err := s.uow.Commit(txCtx); err != nil {
		s.logger.Error("Failed to commit transfer", map[string]any{
			"payer_id":     req.PayerID,
			"payee_id":     req.PayeeID,
			"amount":       req.Amount,
			"reference_id": req.ReferenceID,
			"error":        err.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrStorage, err.Error())
	}

	s.logger.Info("Transfer completed", map[string]any{
		"payer_id":      req.PayerID,
		"payee_id":      req.PayeeID,
		"amount":        req.Amount,
		"fee":           result.Fee,
		"kind":          string(req.Kind),
		"reference_id":  req.ReferenceID,
		"payer_balance": result.PayerBalance,
		"payee_balance": result.PayeeBalance,
	})

	s.emitCompleted(ctx, req, result)

	return result, nil
}

// TransferInTx executes the transfer inside an already-begun unit of work.
// The caller owns the transaction boundary; nothing is committed or rolled
// back here. The purchase coordinator uses this to bind the token movement
// and the receipt insert into one atomic unit.
func (s *Service) TransferInTx(txCtx context.Context, req TransferRequest) (*TransferResult, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	fee := int64(0)
	if req.FeeBps > 0 {
		fee = req.Amount * int64(req.FeeBps) / feeBpsDenominator
	}
	payeeShare := req.Amount - fee

	accounts := s.uow.GetAccountRepository(txCtx)

	// Lock all involved rows in lexicographic ID order so two opposing
	// transfers cannot deadlock on each other.
	lockIDs := []string{req.PayerID, req.PayeeID}
	if fee > 0 {
		lockIDs = append(lockIDs, s.platformAccountID)
	}
	sort.Strings(lockIDs)

	locked := make(map[string]*entity.Account, len(lockIDs))
	for _, id := range lockIDs {
		account, err := accounts.GetForUpdate(txCtx, id)
		if err != nil {
			return nil, errs.NewTransferError(req.PayerID, req.PayeeID, req.Amount, req.ReferenceID,
				"failed to lock account "+id, err)
		}
		locked[id] = account
	}

	payer := locked[req.PayerID]
	payee := locked[req.PayeeID]

	if err := payer.Debit(req.Amount, s.timeProvider); err != nil {
		if errs.IsInsufficientFundsError(err) {
			s.logger.Warn("Transfer rejected, insufficient funds", map[string]any{
				"payer_id": req.PayerID,
				"amount":   req.Amount,
				"balance":  payer.Balance(),
			})
			return nil, err
		}
		return nil, errs.NewTransferError(req.PayerID, req.PayeeID, req.Amount, req.ReferenceID,
			"debit failed", err)
	}

	if err := payee.Credit(payeeShare, s.timeProvider); err != nil {
		return nil, errs.NewTransferError(req.PayerID, req.PayeeID, req.Amount, req.ReferenceID,
			"credit failed", err)
	}

	debitKind, creditKind := req.Kind.EntryKinds()

	payerEntry, err := entity.NewLedgerEntry(req.PayerID, -req.Amount, debitKind, req.ReferenceID, s.timeProvider)
	if err != nil {
		return nil, errs.NewTransferError(req.PayerID, req.PayeeID, req.Amount, req.ReferenceID,
			"payer entry invalid", err)
	}
	payeeEntry, err := entity.NewLedgerEntry(req.PayeeID, payeeShare, creditKind, req.ReferenceID, s.timeProvider)
	if err != nil {
		return nil, errs.NewTransferError(req.PayerID, req.PayeeID, req.Amount, req.ReferenceID,
			"payee entry invalid", err)
	}

	entries := s.uow.GetEntryRepository(txCtx)
	entryIDs := []string{payerEntry.ID, payeeEntry.ID}

	if err := entries.Append(txCtx, payerEntry); err != nil {
		return nil, errs.NewTransferError(req.PayerID, req.PayeeID, req.Amount, req.ReferenceID,
			"failed to append payer entry", err)
	}
	if err := entries.Append(txCtx, payeeEntry); err != nil {
		return nil, errs.NewTransferError(req.PayerID, req.PayeeID, req.Amount, req.ReferenceID,
			"failed to append payee entry", err)
	}

	if fee > 0 {
		platform := locked[s.platformAccountID]
		if err := platform.Credit(fee, s.timeProvider); err != nil {
			return nil, errs.NewTransferError(req.PayerID, req.PayeeID, req.Amount, req.ReferenceID,
				"fee credit failed", err)
		}
		feeEntry, err := entity.NewLedgerEntry(s.platformAccountID, fee, creditKind, req.ReferenceID, s.timeProvider)
		if err != nil {
			return nil, errs.NewTransferError(req.PayerID, req.PayeeID, req.Amount, req.ReferenceID,
				"fee entry invalid", err)
		}
		if err := entries.Append(txCtx, feeEntry); err != nil {
			return nil, errs.NewTransferError(req.PayerID, req.PayeeID, req.Amount, req.ReferenceID,
				"failed to append fee entry", err)
		}
		if err := accounts.Save(txCtx, platform); err != nil {
			return nil, errs.NewTransferError(req.PayerID, req.PayeeID, req.Amount, req.ReferenceID,
				"failed to save platform account", err)
		}
		entryIDs = append(entryIDs, feeEntry.ID)
	}

	if err := accounts.Save(txCtx, payer); err != nil {
		return nil, errs.NewTransferError(req.PayerID, req.PayeeID, req.Amount, req.ReferenceID,
			"failed to save payer", err)
	}
	if err := accounts.Save(txCtx, payee); err != nil {
		return nil, errs.NewTransferError(req.PayerID, req.PayeeID, req.Amount, req.ReferenceID,
			"failed to save payee", err)
	}

	return &TransferResult{
		PayerBalance: payer.Balance(),
		PayeeBalance: payee.Balance(),
		Fee:          fee,
		EntryIDs:     entryIDs,
		CompletedAt:  s.timeProvider.Now(),
	}, nil
}

// emitCompleted publishes the transfer event after commit. Delivery failures
// are logged, never returned; downstream consumers can replay from the entry
// log.
func (s *Service) emitCompleted(ctx context.Context, req TransferRequest, result *TransferResult) {
	if s.events == nil {
		return
	}

	event := coreport.TransferCompletedEvent{
		PayerID:     req.PayerID,
		PayeeID:     req.PayeeID,
		Amount:      req.Amount,
		Fee:         result.Fee,
		Kind:        string(req.Kind),
		ReferenceID: req.ReferenceID,
		CompletedAt: result.CompletedAt,
	}
	if err := s.events.PublishTransferCompleted(ctx, event); err != nil {
		s.logger.Warn("Failed to publish transfer event", map[string]any{
			"payer_id":     req.PayerID,
			"payee_id":     req.PayeeID,
			"reference_id": req.ReferenceID,
			"error":        err.Error(),
		})
	}
}
