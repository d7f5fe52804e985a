package memory

import (
	"context"

	"github.com/creatorhub/token-ledger/internal/domain/entity"
	domainerror "github.com/creatorhub/token-ledger/internal/domain/error"
)

// ItemRepository implements persistence.ItemRepository over the Store
type ItemRepository struct {
	store *Store
}

// NewItemRepository creates an item repository over the store
func NewItemRepository(store *Store) *ItemRepository {
	return &ItemRepository{store: store}
}

// GetByID retrieves an item by ID
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*entity.PurchasableItem, error) {
	if tx := txFromContext(ctx); tx != nil {
		if staged, ok := tx.items[id]; ok {
			return copyItem(staged), nil
		}
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.items[id]
	if !ok {
		return nil, domainerror.ErrItemNotFound
	}
	return copyItem(item), nil
}

// GetForUpdate retrieves an item holding its row lock until the transaction
// ends. Without a transaction it degrades to a plain read.
func (r *ItemRepository) GetForUpdate(ctx context.Context, id string) (*entity.PurchasableItem, error) {
	tx := txFromContext(ctx)
	if tx == nil {
		return r.GetByID(ctx, id)
	}

	tx.lockRow(itemLockKey(id))
	return r.GetByID(ctx, id)
}

// Create creates a new purchasable item
func (r *ItemRepository) Create(ctx context.Context, item *entity.PurchasableItem) error {
	if tx := txFromContext(ctx); tx != nil {
		if _, staged := tx.items[item.ID]; staged {
			return domainerror.ErrInvalidOperation
		}
		if r.exists(item.ID) {
			return domainerror.ErrInvalidOperation
		}
		tx.items[item.ID] = copyItem(item)
		tx.createdItem[item.ID] = true
		return nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.items[item.ID]; ok {
		return domainerror.ErrInvalidOperation
	}
	r.store.items[item.ID] = copyItem(item)
	return nil
}

// Save persists the item's current state
func (r *ItemRepository) Save(ctx context.Context, item *entity.PurchasableItem) error {
	if tx := txFromContext(ctx); tx != nil {
		if !r.exists(item.ID) && !tx.createdItem[item.ID] {
			return domainerror.ErrItemNotFound
		}
		tx.items[item.ID] = copyItem(item)
		return nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.items[item.ID]; !ok {
		return domainerror.ErrItemNotFound
	}
	r.store.items[item.ID] = copyItem(item)
	return nil
}

func (r *ItemRepository) exists(id string) bool {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, ok := r.store.items[id]
	return ok
}
