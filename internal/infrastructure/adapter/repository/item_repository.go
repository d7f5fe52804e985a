package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/creatorhub/token-ledger/internal/domain/entity"
	errs "github.com/creatorhub/token-ledger/internal/domain/error"
	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
	"github.com/creatorhub/token-ledger/internal/infrastructure/adapter/model"
)

// ItemRepository implements persistence.ItemRepository using GORM
type ItemRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewItemRepository creates a new ItemRepository instance
func NewItemRepository(db *gorm.DB, logger coreport.Logger) *ItemRepository {
	return &ItemRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func (r *ItemRepository) entityToModel(item *entity.PurchasableItem) model.PurchasableItem {
	return model.PurchasableItem{
		ID:                item.ID,
		OwnerAccountID:    item.OwnerAccountID,
		Kind:              string(item.Kind),
		Price:             item.Price,
		EarlyBirdPrice:    item.EarlyBirdPrice,
		EarlyBirdDeadline: item.EarlyBirdDeadline,
		MaxQuantity:       item.MaxQuantity,
		ExpiresAt:         item.ExpiresAt,
		Status:            string(item.Status),
		SoldCount:         item.SoldCount,
		Revenue:           item.Revenue,
		ContentRef:        item.ContentRef,
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
	}
}

func (r *ItemRepository) modelToEntity(m *model.PurchasableItem) *entity.PurchasableItem {
	return &entity.PurchasableItem{
		ID:                m.ID,
		OwnerAccountID:    m.OwnerAccountID,
		Kind:              entity.ItemKind(m.Kind),
		Price:             m.Price,
		EarlyBirdPrice:    m.EarlyBirdPrice,
		EarlyBirdDeadline: m.EarlyBirdDeadline,
		MaxQuantity:       m.MaxQuantity,
		ExpiresAt:         m.ExpiresAt,
		Status:            entity.ItemStatus(m.Status),
		SoldCount:         m.SoldCount,
		Revenue:           m.Revenue,
		ContentRef:        m.ContentRef,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func (r *ItemRepository) handleDatabaseError(operation string, err error, itemID string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.Warn("Item not found", map[string]any{
			"item_id":   itemID,
			"operation": operation,
		})
		return errs.ErrItemNotFound
	}

	r.logger.Error(fmt.Sprintf("Database error when %s", operation), map[string]any{
		"item_id": itemID,
		"error":   err.Error(),
	})

	if r.errorClassifier.IsDuplicateKeyError(err) {
		return errs.ErrInvalidOperation
	}

	return fmt.Errorf("%w: %s", errs.ErrStorage, err.Error())
}

// GetByID retrieves an item by ID
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*entity.PurchasableItem, error) {
	var m model.PurchasableItem
	result := r.db.WithContext(ctx).First(&m, "id = ?", id)
	if result.Error != nil {
		return nil, r.handleDatabaseError("getting item", result.Error, id)
	}

	return r.modelToEntity(&m), nil
}

// GetForUpdate retrieves an item under an exclusive row lock
func (r *ItemRepository) GetForUpdate(ctx context.Context, id string) (*entity.PurchasableItem, error) {
	var m model.PurchasableItem
	result := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "id = ?", id)
	if result.Error != nil {
		return nil, r.handleDatabaseError("locking item", result.Error, id)
	}

	return r.modelToEntity(&m), nil
}

// Create creates a new purchasable item
func (r *ItemRepository) Create(ctx context.Context, item *entity.PurchasableItem) error {
	m := r.entityToModel(item)

	result := r.db.WithContext(ctx).Create(&m)
	if result.Error != nil {
		return r.handleDatabaseError("creating item", result.Error, item.ID)
	}

	return nil
}

// Save persists the item's status, sales aggregates and timestamp
func (r *ItemRepository) Save(ctx context.Context, item *entity.PurchasableItem) error {
	result := r.db.WithContext(ctx).Model(&model.PurchasableItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"status":     string(item.Status),
			"sold_count": item.SoldCount,
			"revenue":    item.Revenue,
			"updated_at": item.UpdatedAt,
		})

	if result.Error != nil {
		return r.handleDatabaseError("saving item", result.Error, item.ID)
	}
	if result.RowsAffected == 0 {
		return errs.ErrItemNotFound
	}

	return nil
}
