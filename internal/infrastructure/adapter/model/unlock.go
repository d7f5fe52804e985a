package model

import (
	"time"
)

// Unlock represents the database model for purchase receipts. The composite
// unique index on (buyer_account_id, item_id) closes the double-purchase
// race at the storage layer.
type Unlock struct {
	ID             string     `gorm:"primaryKey;size:36"`
	BuyerAccountID string     `gorm:"not null;uniqueIndex:idx_unlocks_buyer_item;size:64"`
	ItemID         string     `gorm:"not null;uniqueIndex:idx_unlocks_buyer_item;size:64"`
	TokensSpent    int64      `gorm:"not null;default:0"`
	Free           bool       `gorm:"not null;default:false"`
	CreatedAt      time.Time  `gorm:"not null"`
	LastViewedAt   *time.Time

	Buyer Account         `gorm:"foreignKey:BuyerAccountID;references:ID"`
	Item  PurchasableItem `gorm:"foreignKey:ItemID;references:ID"`
}

// TableName specifies the table name for Unlock
func (Unlock) TableName() string {
	return "unlocks"
}
