package persistence

import (
	"context"

	"github.com/creatorhub/token-ledger/internal/domain/entity"
)

// ItemRepository defines methods to interact with purchasable items
type ItemRepository interface {
	// GetByID retrieves an item by ID
	//
	// Possible errors:
	// - ErrItemNotFound: If no item with the given ID exists
	// - ErrStorage: If the storage layer fails
	GetByID(ctx context.Context, id string) (*entity.PurchasableItem, error)

	// GetForUpdate retrieves an item with an exclusive row lock for the
	// remainder of the surrounding unit of work, so the sold-out check and
	// the sale increment cannot race.
	//
	// Possible errors:
	// - ErrItemNotFound: If no item with the given ID exists
	// - ErrStorage: If the storage layer fails
	GetForUpdate(ctx context.Context, id string) (*entity.PurchasableItem, error)

	// Create creates a new purchasable item
	//
	// Possible errors:
	// - ErrInvalidOperation: If an item with the same ID already exists
	// - ErrStorage: If the storage layer fails
	Create(ctx context.Context, item *entity.PurchasableItem) error

	// Save persists the item's status, sales aggregates and timestamp
	//
	// Possible errors:
	// - ErrItemNotFound: If the item doesn't exist
	// - ErrStorage: If the storage layer fails
	Save(ctx context.Context, item *entity.PurchasableItem) error
}
