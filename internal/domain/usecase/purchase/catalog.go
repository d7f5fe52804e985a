package purchase

import (
	"context"
	"fmt"
	"time"

	"github.com/creatorhub/token-ledger/internal/domain/entity"
	errs "github.com/creatorhub/token-ledger/internal/domain/error"
)

// CreateItemRequest carries the fields needed to announce a new item
type CreateItemRequest struct {
	ItemID            string
	OwnerAccountID    string
	Kind              entity.ItemKind
	Price             int64
	EarlyBirdPrice    int64
	EarlyBirdDeadline *time.Time
	MaxQuantity       int64
	ExpiresAt         *time.Time
	ContentRef        string
}

// CreateItem announces a new purchasable item
func (s *Service) CreateItem(ctx context.Context, req CreateItemRequest) (*entity.PurchasableItem, error) {
	item, err := entity.NewPurchasableItem(req.ItemID, req.OwnerAccountID, req.Kind, req.Price, req.ContentRef, s.timeProvider)
	if err != nil {
		return nil, err
	}

	if req.EarlyBirdPrice > 0 {
		if req.EarlyBirdDeadline == nil || req.EarlyBirdPrice >= req.Price {
			return nil, errs.ErrInvalidOperation
		}
		item.EarlyBirdPrice = req.EarlyBirdPrice
		item.EarlyBirdDeadline = req.EarlyBirdDeadline
	}
	item.MaxQuantity = req.MaxQuantity
	item.ExpiresAt = req.ExpiresAt

	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("Item created", map[string]any{
		"item_id":  item.ID,
		"owner_id": item.OwnerAccountID,
		"kind":     string(item.Kind),
		"price":    item.Price,
	})

	return item, nil
}

// ChangeItemStatus advances an item through its lifecycle
// (announced -> started -> ended, or -> cancelled). Only the owner may do so.
// The item row is locked for the read-modify-write so a purchase committing
// in between cannot have its sale aggregates overwritten by the save.
func (s *Service) ChangeItemStatus(ctx context.Context, callerAccountID, itemID string, status entity.ItemStatus) error {
	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s", errs.ErrStorage, err.Error())
	}

	if err := s.changeItemStatusInTx(txCtx, callerAccountID, itemID, status); err != nil {
		if rbErr := s.uow.Rollback(txCtx); rbErr != nil {
			s.logger.Error("Rollback failed after status change error", map[string]any{
				"item_id": itemID,
				"error":   rbErr.Error(),
			})
		}
		return err
	}

	if err := s.uow.Commit(txCtx); err != nil {
		s.logger.Error("Failed to commit status change", map[string]any{
			"item_id": itemID,
			"status":  string(status),
			"error":   err.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrStorage, err.Error())
	}

	s.logger.Info("Item status changed", map[string]any{
		"item_id": itemID,
		"status":  string(status),
	})
	return nil
}

func (s *Service) changeItemStatusInTx(txCtx context.Context, callerAccountID, itemID string, status entity.ItemStatus) error {
	items := s.uow.GetItemRepository(txCtx)

	item, err := items.GetForUpdate(txCtx, itemID)
	if err != nil {
		return err
	}
	if item.OwnerAccountID != callerAccountID {
		return errs.ErrInvalidOperation
	}

	if err := item.TransitionTo(status, s.timeProvider); err != nil {
		return err
	}
	return items.Save(txCtx, item)
}

// GetItem retrieves an item by ID
func (s *Service) GetItem(ctx context.Context, itemID string) (*entity.PurchasableItem, error) {
	if itemID == "" {
		return nil, errs.ErrInvalidOperation
	}
	return s.items.GetByID(ctx, itemID)
}

// MarkViewed records that the buyer accessed their unlocked content
func (s *Service) MarkViewed(ctx context.Context, buyerAccountID, itemID string) error {
	unlock, err := s.unlocks.GetByBuyerAndItem(ctx, buyerAccountID, itemID)
	if err != nil {
		return err
	}
	return s.unlocks.MarkViewed(ctx, unlock.ID, s.timeProvider.Now())
}
