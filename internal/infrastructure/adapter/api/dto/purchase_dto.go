package dto

import "time"

// PurchaseRequest represents the API request to unlock an item
type PurchaseRequest struct {
	BuyerAccountID string `json:"buyerAccountId" binding:"required"`
	ItemID         string `json:"itemId" binding:"required"`
}

// PurchaseResponse represents the API response for a completed unlock
type PurchaseResponse struct {
	UnlockID    string `json:"unlockId"`
	ContentRef  string `json:"contentRef,omitempty"`
	TokensSpent int64  `json:"tokensSpent"`
	Free        bool   `json:"free"`
}

// CreateItemRequest represents the API request to announce a new item
type CreateItemRequest struct {
	ItemID            string     `json:"itemId" binding:"required"`
	OwnerAccountID    string     `json:"ownerAccountId" binding:"required"`
	Kind              string     `json:"kind" binding:"required,oneof=ppv_message show_ticket tip_goal"`
	Price             int64      `json:"price" binding:"required,gt=0"`
	EarlyBirdPrice    int64      `json:"earlyBirdPrice"`
	EarlyBirdDeadline *time.Time `json:"earlyBirdDeadline"`
	MaxQuantity       int64      `json:"maxQuantity"`
	ExpiresAt         *time.Time `json:"expiresAt"`
	ContentRef        string     `json:"contentRef"`
}

// ItemResponse represents the API response describing an item
type ItemResponse struct {
	ItemID            string     `json:"itemId"`
	OwnerAccountID    string     `json:"ownerAccountId"`
	Kind              string     `json:"kind"`
	Price             int64      `json:"price"`
	EarlyBirdPrice    int64      `json:"earlyBirdPrice,omitempty"`
	EarlyBirdDeadline *time.Time `json:"earlyBirdDeadline,omitempty"`
	MaxQuantity       int64      `json:"maxQuantity,omitempty"`
	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
	Status            string     `json:"status"`
	SoldCount         int64      `json:"soldCount"`
	Revenue           int64      `json:"revenue"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// ChangeItemStatusRequest represents the API request to advance an item's
// lifecycle
type ChangeItemStatusRequest struct {
	CallerAccountID string `json:"callerAccountId" binding:"required"`
	Status          string `json:"status" binding:"required,oneof=started ended cancelled"`
}
