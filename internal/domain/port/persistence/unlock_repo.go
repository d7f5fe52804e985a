package persistence

import (
	"context"
	"time"

	"github.com/creatorhub/token-ledger/internal/domain/entity"
)

// UnlockRepository defines methods to interact with unlock/ticket receipts.
// The (buyer, item) pair is unique; the unique constraint is the authority
// that closes the double-purchase race.
type UnlockRepository interface {
	// Create persists a new receipt
	//
	// Possible errors:
	// - ErrAlreadyUnlocked: If a receipt for (buyer, item) already exists
	// - ErrStorage: If the storage layer fails
	Create(ctx context.Context, unlock *entity.Unlock) error

	// Exists checks whether the buyer already holds a receipt for the item
	//
	// Possible errors:
	// - ErrStorage: If the storage layer fails
	Exists(ctx context.Context, buyerAccountID, itemID string) (bool, error)

	// GetByBuyerAndItem retrieves the receipt for a (buyer, item) pair
	//
	// Possible errors:
	// - ErrUnlockNotFound: If no receipt exists
	// - ErrStorage: If the storage layer fails
	GetByBuyerAndItem(ctx context.Context, buyerAccountID, itemID string) (*entity.Unlock, error)

	// MarkViewed records the viewing timestamp, the only mutable receipt field
	//
	// Possible errors:
	// - ErrUnlockNotFound: If the receipt doesn't exist
	// - ErrStorage: If the storage layer fails
	MarkViewed(ctx context.Context, unlockID string, at time.Time) error
}
