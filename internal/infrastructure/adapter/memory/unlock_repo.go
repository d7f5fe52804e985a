package memory

import (
	"context"
	"time"

	"github.com/creatorhub/token-ledger/internal/domain/entity"
	domainerror "github.com/creatorhub/token-ledger/internal/domain/error"
)

// UnlockRepository implements persistence.UnlockRepository over the Store
type UnlockRepository struct {
	store *Store
}

// NewUnlockRepository creates an unlock repository over the store
func NewUnlockRepository(store *Store) *UnlockRepository {
	return &UnlockRepository{store: store}
}

// Create persists a new receipt, rejecting duplicates for (buyer, item)
func (r *UnlockRepository) Create(ctx context.Context, unlock *entity.Unlock) error {
	if tx := txFromContext(ctx); tx != nil {
		for _, staged := range tx.unlocks {
			if staged.BuyerAccountID == unlock.BuyerAccountID && staged.ItemID == unlock.ItemID {
				return domainerror.ErrAlreadyUnlocked
			}
		}
		if r.existsStored(unlock.BuyerAccountID, unlock.ItemID) {
			return domainerror.ErrAlreadyUnlocked
		}
		tx.unlocks = append(tx.unlocks, copyUnlock(unlock))
		return nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := unlockKey(unlock.BuyerAccountID, unlock.ItemID)
	if _, ok := r.store.unlocks[key]; ok {
		return domainerror.ErrAlreadyUnlocked
	}
	cp := copyUnlock(unlock)
	r.store.unlocks[key] = cp
	r.store.unlocksByID[cp.ID] = cp
	return nil
}

// Exists checks whether the buyer already holds a receipt for the item
func (r *UnlockRepository) Exists(ctx context.Context, buyerAccountID, itemID string) (bool, error) {
	if tx := txFromContext(ctx); tx != nil {
		for _, staged := range tx.unlocks {
			if staged.BuyerAccountID == buyerAccountID && staged.ItemID == itemID {
				return true, nil
			}
		}
	}
	return r.existsStored(buyerAccountID, itemID), nil
}

// GetByBuyerAndItem retrieves the receipt for a (buyer, item) pair
func (r *UnlockRepository) GetByBuyerAndItem(ctx context.Context, buyerAccountID, itemID string) (*entity.Unlock, error) {
	if tx := txFromContext(ctx); tx != nil {
		for _, staged := range tx.unlocks {
			if staged.BuyerAccountID == buyerAccountID && staged.ItemID == itemID {
				return copyUnlock(staged), nil
			}
		}
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	unlock, ok := r.store.unlocks[unlockKey(buyerAccountID, itemID)]
	if !ok {
		return nil, domainerror.ErrUnlockNotFound
	}
	return copyUnlock(unlock), nil
}

// MarkViewed records the viewing timestamp
func (r *UnlockRepository) MarkViewed(ctx context.Context, unlockID string, at time.Time) error {
	if tx := txFromContext(ctx); tx != nil {
		for _, staged := range tx.unlocks {
			if staged.ID == unlockID {
				tx.viewed[unlockID] = at
				return nil
			}
		}
		if !r.existsByID(unlockID) {
			return domainerror.ErrUnlockNotFound
		}
		tx.viewed[unlockID] = at
		return nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	unlock, ok := r.store.unlocksByID[unlockID]
	if !ok {
		return domainerror.ErrUnlockNotFound
	}
	viewedAt := at
	unlock.LastViewedAt = &viewedAt
	return nil
}

func (r *UnlockRepository) existsStored(buyerAccountID, itemID string) bool {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, ok := r.store.unlocks[unlockKey(buyerAccountID, itemID)]
	return ok
}

func (r *UnlockRepository) existsByID(unlockID string) bool {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, ok := r.store.unlocksByID[unlockID]
	return ok
}
