package entity

import (
	"time"

	"github.com/google/uuid"

	errs "github.com/creatorhub/token-ledger/internal/domain/error"
	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
)

// Unlock is the receipt proving a buyer has paid for a specific item exactly
// once. The (BuyerAccountID, ItemID) pair is unique; a receipt is never
// updated except to record viewing metadata.
type Unlock struct {
	ID             string     // Unique receipt identifier
	BuyerAccountID string     // Who paid
	ItemID         string     // What was unlocked
	TokensSpent    int64      // Price actually paid, 0 for free self-unlocks
	Free           bool       // True when the owner unlocked their own content
	CreatedAt      time.Time  // When the receipt was created
	LastViewedAt   *time.Time // Usage metadata, the only mutable field
}

// NewUnlock creates a paid unlock receipt
func NewUnlock(buyerAccountID, itemID string, tokensSpent int64, timeProvider coreport.TimeProvider) (*Unlock, error) {
	if buyerAccountID == "" {
		return nil, errs.ErrInvalidAccountID
	}
	if itemID == "" {
		return nil, errs.ErrInvalidOperation
	}
	if tokensSpent <= 0 {
		return nil, errs.ErrInvalidAmount
	}

	return &Unlock{
		ID:             uuid.NewString(),
		BuyerAccountID: buyerAccountID,
		ItemID:         itemID,
		TokensSpent:    tokensSpent,
		CreatedAt:      timeProvider.Now(),
	}, nil
}

// NewFreeUnlock creates a zero-cost receipt for a creator accessing their
// own content
func NewFreeUnlock(ownerAccountID, itemID string, timeProvider coreport.TimeProvider) (*Unlock, error) {
	if ownerAccountID == "" {
		return nil, errs.ErrInvalidAccountID
	}
	if itemID == "" {
		return nil, errs.ErrInvalidOperation
	}

	return &Unlock{
		ID:             uuid.NewString(),
		BuyerAccountID: ownerAccountID,
		ItemID:         itemID,
		Free:           true,
		CreatedAt:      timeProvider.Now(),
	}, nil
}

// MarkViewed records that the unlocked content was accessed
func (u *Unlock) MarkViewed(timeProvider coreport.TimeProvider) {
	now := timeProvider.Now()
	u.LastViewedAt = &now
}
