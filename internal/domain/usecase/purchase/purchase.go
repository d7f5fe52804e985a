package purchase

import (
	"context"
	"fmt"

	"github.com/creatorhub/token-ledger/internal/domain/entity"
	errs "github.com/creatorhub/token-ledger/internal/domain/error"
	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
	"github.com/creatorhub/token-ledger/internal/domain/usecase/ledger"
)

// Purchase unlocks the item for the buyer, charging the effective price.
// Creators unlock their own content for free. A buyer who already holds a
// receipt is rejected with ErrAlreadyUnlocked and never charged twice.
func (s *Service) Purchase(ctx context.Context, buyerAccountID, itemID string) (*PurchaseResult, error) {
	if buyerAccountID == "" {
		return nil, errs.ErrInvalidAccountID
	}
	if itemID == "" {
		return nil, errs.ErrInvalidOperation
	}

	// Fast path: a cached receipt means this purchase already committed
	if s.cache != nil && s.cache.Seen(ctx, buyerAccountID, itemID) {
		return nil, errs.NewPurchaseError(buyerAccountID, itemID, "receipt already exists", errs.ErrAlreadyUnlocked)
	}

	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrStorage, err.Error())
	}

	result, item, err := s.purchaseInTx(txCtx, buyerAccountID, itemID)
	if err != nil {
		if rbErr := s.uow.Rollback(txCtx); rbErr != nil {
			s.logger.Error("Rollback failed after purchase error", map[string]any{
				"buyer_id": buyerAccountID,
				"item_id":  itemID,
				"error":    rbErr.Error(),
			})
		}
		return nil, err
	}

	if err := s.uow.Commit(txCtx); err != nil {
		s.logger.Error("Failed to commit purchase", map[string]any{
			"buyer_id": buyerAccountID,
			"item_id":  itemID,
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrStorage, err.Error())
	}

	s.logger.Info("Purchase completed", map[string]any{
		"buyer_id":     buyerAccountID,
		"item_id":      itemID,
		"unlock_id":    result.UnlockID,
		"tokens_spent": result.TokensSpent,
		"free":         result.Free,
	})

	if s.cache != nil {
		s.cache.Mark(ctx, buyerAccountID, itemID)
	}
	s.emitUnlockCreated(ctx, result, item, buyerAccountID)

	return result, nil
}

// purchaseInTx performs every purchase step inside the unit of work. The
// item row is locked first so the sold-out check, the transfer and the sale
// increment cannot race with a concurrent purchase of the same item.
func (s *Service) purchaseInTx(txCtx context.Context, buyerAccountID, itemID string) (*PurchaseResult, *entity.PurchasableItem, error) {
	items := s.uow.GetItemRepository(txCtx)
	unlocks := s.uow.GetUnlockRepository(txCtx)

	item, err := items.GetForUpdate(txCtx, itemID)
	if err != nil {
		return nil, nil, err
	}

	// Creators access their own content for free, idempotently
	if buyerAccountID == item.OwnerAccountID {
		existing, err := unlocks.GetByBuyerAndItem(txCtx, buyerAccountID, itemID)
		if err == nil {
			return &PurchaseResult{
				UnlockID:   existing.ID,
				ContentRef: item.ContentRef,
				Free:       true,
			}, item, nil
		}
		if !errs.IsNotFoundError(err) {
			return nil, nil, err
		}

		unlock, err := entity.NewFreeUnlock(buyerAccountID, itemID, s.timeProvider)
		if err != nil {
			return nil, nil, err
		}
		if err := unlocks.Create(txCtx, unlock); err != nil {
			return nil, nil, err
		}
		return &PurchaseResult{
			UnlockID:   unlock.ID,
			ContentRef: item.ContentRef,
			Free:       true,
		}, item, nil
	}

	exists, err := unlocks.Exists(txCtx, buyerAccountID, itemID)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, errs.NewPurchaseError(buyerAccountID, itemID, "receipt already exists", errs.ErrAlreadyUnlocked)
	}

	now := s.timeProvider.Now()
	if err := item.CheckPurchasable(now); err != nil {
		return nil, nil, errs.NewPurchaseError(buyerAccountID, itemID, "purchase window closed", err)
	}

	price := item.EffectivePrice(now)

	if _, err := s.transfers.TransferInTx(txCtx, ledger.TransferRequest{
		PayerID:     buyerAccountID,
		PayeeID:     item.OwnerAccountID,
		Amount:      price,
		Kind:        transferKindFor(item.Kind),
		ReferenceID: itemID,
		FeeBps:      s.feeBps,
	}); err != nil {
		return nil, nil, err
	}

	unlock, err := entity.NewUnlock(buyerAccountID, itemID, price, s.timeProvider)
	if err != nil {
		return nil, nil, err
	}

	// The unique (buyer, item) constraint is the authority here: a racing
	// purchase surfaces as ErrAlreadyUnlocked and the whole unit, transfer
	// included, rolls back.
	if err := unlocks.Create(txCtx, unlock); err != nil {
		if errs.IsAlreadyUnlockedError(err) {
			return nil, nil, errs.NewPurchaseError(buyerAccountID, itemID, "lost purchase race", errs.ErrAlreadyUnlocked)
		}
		return nil, nil, err
	}

	item.RecordSale(price, s.timeProvider)
	if err := items.Save(txCtx, item); err != nil {
		return nil, nil, err
	}

	return &PurchaseResult{
		UnlockID:    unlock.ID,
		ContentRef:  item.ContentRef,
		TokensSpent: price,
	}, item, nil
}

func (s *Service) emitUnlockCreated(ctx context.Context, result *PurchaseResult, item *entity.PurchasableItem, buyerAccountID string) {
	if s.events == nil {
		return
	}

	event := coreport.UnlockCreatedEvent{
		UnlockID:       result.UnlockID,
		BuyerAccountID: buyerAccountID,
		OwnerAccountID: item.OwnerAccountID,
		ItemID:         item.ID,
		ItemKind:       string(item.Kind),
		TokensSpent:    result.TokensSpent,
		Free:           result.Free,
		CreatedAt:      s.timeProvider.Now(),
	}
	if err := s.events.PublishUnlockCreated(ctx, event); err != nil {
		s.logger.Warn("Failed to publish unlock event", map[string]any{
			"unlock_id": result.UnlockID,
			"item_id":   item.ID,
			"error":     err.Error(),
		})
	}
}

func transferKindFor(kind entity.ItemKind) ledger.TransferKind {
	switch kind {
	case entity.ItemShowTicket:
		return ledger.TransferTicket
	case entity.ItemTipGoal:
		return ledger.TransferTip
	default:
		return ledger.TransferPPV
	}
}
