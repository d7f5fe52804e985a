package model

import (
	"time"
)

// PurchasableItem represents the database model for priced items
type PurchasableItem struct {
	ID                string     `gorm:"primaryKey;size:64"`
	OwnerAccountID    string     `gorm:"not null;index;size:64"`
	Kind              string     `gorm:"not null;size:32"`
	Price             int64      `gorm:"not null;check:price > 0"`
	EarlyBirdPrice    int64      `gorm:"not null;default:0"`
	EarlyBirdDeadline *time.Time
	MaxQuantity       int64 `gorm:"not null;default:0"`
	ExpiresAt         *time.Time
	Status            string    `gorm:"not null;size:16;index"`
	SoldCount         int64     `gorm:"not null;default:0"`
	Revenue           int64     `gorm:"not null;default:0"`
	ContentRef        string    `gorm:"size:255"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`

	Owner Account `gorm:"foreignKey:OwnerAccountID;references:ID"`
}

// TableName specifies the table name for PurchasableItem
func (PurchasableItem) TableName() string {
	return "purchasable_items"
}
