package model

import (
	"time"
)

// Account represents the database model for ledger accounts
type Account struct {
	ID             string    `gorm:"primaryKey;size:64"`
	Balance        int64     `gorm:"not null;default:0;check:balance >= 0"`
	TotalEarned    int64     `gorm:"not null;default:0"`
	TotalSpent     int64     `gorm:"not null;default:0"`
	TotalPurchased int64     `gorm:"not null;default:0"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName specifies the table name for Account
func (Account) TableName() string {
	return "accounts"
}
