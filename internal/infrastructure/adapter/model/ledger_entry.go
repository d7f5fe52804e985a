package model

import (
	"time"
)

// LedgerEntry represents the database model for the append-only entry log
type LedgerEntry struct {
	ID          string    `gorm:"primaryKey;size:36"`
	AccountID   string    `gorm:"not null;index;size:64"`
	Amount      int64     `gorm:"not null"`
	Kind        string    `gorm:"not null;size:32"`
	ReferenceID string    `gorm:"index;size:64"`
	CreatedAt   time.Time `gorm:"not null;index"`

	Account Account `gorm:"foreignKey:AccountID;references:ID"`
}

// TableName specifies the table name for LedgerEntry
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
