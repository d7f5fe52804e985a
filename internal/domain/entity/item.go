package entity

import (
	"time"

	errs "github.com/creatorhub/token-ledger/internal/domain/error"
	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
)

// ItemKind represents the monetized content type behind a purchasable item
type ItemKind string

// Item kinds
const (
	ItemPPVMessage ItemKind = "ppv_message"
	ItemShowTicket ItemKind = "show_ticket"
	ItemTipGoal    ItemKind = "tip_goal"
)

// ItemStatus represents the lifecycle state of a purchasable item
type ItemStatus string

// Item statuses. Purchases are accepted only while the item is announced
// or started.
const (
	StatusAnnounced ItemStatus = "announced"
	StatusStarted   ItemStatus = "started"
	StatusEnded     ItemStatus = "ended"
	StatusCancelled ItemStatus = "cancelled"
)

// PurchasableItem is a priced object (PPV message, show ticket, tip goal)
// owned by a creator account.
type PurchasableItem struct {
	ID                string     // Unique item identifier
	OwnerAccountID    string     // Creator/seller account
	Kind              ItemKind   // What kind of content this sells
	Price             int64      // Regular price in tokens, always positive
	EarlyBirdPrice    int64      // Discounted price, 0 when unused
	EarlyBirdDeadline *time.Time // Early-bird window end, nil when unused
	MaxQuantity       int64      // Sales cap, 0 means unlimited
	ExpiresAt         *time.Time // Hard expiry, nil when unused
	Status            ItemStatus // Lifecycle state
	SoldCount         int64      // Number of completed sales
	Revenue           int64      // Total tokens earned by the owner
	ContentRef        string     // Opaque reference resolved by the delivery layer
	CreatedAt         time.Time  // When the item was created
	UpdatedAt         time.Time  // When the item was last updated
}

// NewPurchasableItem creates a new item in the announced state
func NewPurchasableItem(
	id string,
	ownerAccountID string,
	kind ItemKind,
	price int64,
	contentRef string,
	timeProvider coreport.TimeProvider,
) (*PurchasableItem, error) {
	if id == "" || ownerAccountID == "" {
		return nil, errs.ErrInvalidOperation
	}
	if price <= 0 {
		return nil, errs.ErrInvalidAmount
	}
	if !isValidItemKind(kind) {
		return nil, errs.ErrInvalidOperation
	}

	now := timeProvider.Now()
	return &PurchasableItem{
		ID:             id,
		OwnerAccountID: ownerAccountID,
		Kind:           kind,
		Price:          price,
		Status:         StatusAnnounced,
		ContentRef:     contentRef,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// EffectivePrice returns the price a buyer pays at the given instant.
// Strictly before the early-bird deadline the discounted price applies;
// at or after the deadline the regular price applies.
func (i *PurchasableItem) EffectivePrice(now time.Time) int64 {
	if i.EarlyBirdDeadline != nil && i.EarlyBirdPrice > 0 && now.Before(*i.EarlyBirdDeadline) {
		return i.EarlyBirdPrice
	}
	return i.Price
}

// IsExpired reports whether the item's expiry has passed
func (i *PurchasableItem) IsExpired(now time.Time) bool {
	return i.ExpiresAt != nil && !now.Before(*i.ExpiresAt)
}

// IsSoldOut reports whether the sales cap has been reached
func (i *PurchasableItem) IsSoldOut() bool {
	return i.MaxQuantity > 0 && i.SoldCount >= i.MaxQuantity
}

// AcceptsPurchases reports whether the lifecycle state allows new sales
func (i *PurchasableItem) AcceptsPurchases() bool {
	return i.Status == StatusAnnounced || i.Status == StatusStarted
}

// CheckPurchasable validates every purchase-window condition at once and
// returns the specific rejection reason, or nil when a sale may proceed.
func (i *PurchasableItem) CheckPurchasable(now time.Time) error {
	if !i.AcceptsPurchases() {
		return errs.ErrNotPurchasable
	}
	if i.IsExpired(now) {
		return errs.ErrExpired
	}
	if i.IsSoldOut() {
		return errs.ErrSoldOut
	}
	return nil
}

// TransitionTo advances the item's lifecycle. Allowed transitions:
// announced -> started -> ended, and announced/started -> cancelled.
func (i *PurchasableItem) TransitionTo(status ItemStatus, timeProvider coreport.TimeProvider) error {
	allowed := false
	switch i.Status {
	case StatusAnnounced:
		allowed = status == StatusStarted || status == StatusCancelled
	case StatusStarted:
		allowed = status == StatusEnded || status == StatusCancelled
	}
	if !allowed {
		return errs.ErrInvalidOperation
	}

	i.Status = status
	i.UpdatedAt = timeProvider.Now()
	return nil
}

// RecordSale advances the sales aggregates after a completed purchase
func (i *PurchasableItem) RecordSale(tokens int64, timeProvider coreport.TimeProvider) {
	i.SoldCount++
	i.Revenue += tokens
	i.UpdatedAt = timeProvider.Now()
}

func isValidItemKind(kind ItemKind) bool {
	switch kind {
	case ItemPPVMessage, ItemShowTicket, ItemTipGoal:
		return true
	}
	return false
}
