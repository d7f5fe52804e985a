package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/creatorhub/token-ledger/internal/domain/entity"
	errs "github.com/creatorhub/token-ledger/internal/domain/error"
	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
	"github.com/creatorhub/token-ledger/internal/infrastructure/adapter/model"
)

// UnlockRepository implements persistence.UnlockRepository using GORM
type UnlockRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewUnlockRepository creates a new UnlockRepository instance
func NewUnlockRepository(db *gorm.DB, logger coreport.Logger) *UnlockRepository {
	return &UnlockRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func (r *UnlockRepository) modelToEntity(m *model.Unlock) *entity.Unlock {
	return &entity.Unlock{
		ID:             m.ID,
		BuyerAccountID: m.BuyerAccountID,
		ItemID:         m.ItemID,
		TokensSpent:    m.TokensSpent,
		Free:           m.Free,
		CreatedAt:      m.CreatedAt,
		LastViewedAt:   m.LastViewedAt,
	}
}

// Create persists a new receipt. A unique violation on (buyer, item) maps
// to ErrAlreadyUnlocked; with the insert inside the purchase unit of work
// this is what closes the double-purchase race.
func (r *UnlockRepository) Create(ctx context.Context, unlock *entity.Unlock) error {
	m := model.Unlock{
		ID:             unlock.ID,
		BuyerAccountID: unlock.BuyerAccountID,
		ItemID:         unlock.ItemID,
		TokensSpent:    unlock.TokensSpent,
		Free:           unlock.Free,
		CreatedAt:      unlock.CreatedAt,
		LastViewedAt:   unlock.LastViewedAt,
	}

	result := r.db.WithContext(ctx).Create(&m)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			r.logger.Warn("Duplicate unlock attempt", map[string]any{
				"buyer_id": unlock.BuyerAccountID,
				"item_id":  unlock.ItemID,
			})
			return errs.ErrAlreadyUnlocked
		}
		r.logger.Error("Failed to create unlock", map[string]any{
			"buyer_id": unlock.BuyerAccountID,
			"item_id":  unlock.ItemID,
			"error":    result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrStorage, result.Error.Error())
	}

	return nil
}

// Exists checks whether the buyer already holds a receipt for the item
func (r *UnlockRepository) Exists(ctx context.Context, buyerAccountID, itemID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.Unlock{}).
		Where("buyer_account_id = ? AND item_id = ?", buyerAccountID, itemID).
		Count(&count)
	if result.Error != nil {
		r.logger.Error("Failed to check unlock existence", map[string]any{
			"buyer_id": buyerAccountID,
			"item_id":  itemID,
			"error":    result.Error.Error(),
		})
		return false, fmt.Errorf("%w: %s", errs.ErrStorage, result.Error.Error())
	}

	return count > 0, nil
}

// GetByBuyerAndItem retrieves the receipt for a (buyer, item) pair
func (r *UnlockRepository) GetByBuyerAndItem(ctx context.Context, buyerAccountID, itemID string) (*entity.Unlock, error) {
	var m model.Unlock
	result := r.db.WithContext(ctx).
		Where("buyer_account_id = ? AND item_id = ?", buyerAccountID, itemID).
		First(&m)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUnlockNotFound
		}
		r.logger.Error("Failed to get unlock", map[string]any{
			"buyer_id": buyerAccountID,
			"item_id":  itemID,
			"error":    result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrStorage, result.Error.Error())
	}

	return r.modelToEntity(&m), nil
}

// MarkViewed records the viewing timestamp, the only mutable receipt field
func (r *UnlockRepository) MarkViewed(ctx context.Context, unlockID string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.Unlock{}).
		Where("id = ?", unlockID).
		Update("last_viewed_at", at)
	if result.Error != nil {
		return fmt.Errorf("%w: %s", errs.ErrStorage, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return errs.ErrUnlockNotFound
	}

	return nil
}
