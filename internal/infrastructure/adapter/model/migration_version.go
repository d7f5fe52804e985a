package model

import (
	"time"
)

// MigrationVersion tracks the applied schema version
type MigrationVersion struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Version   string    `gorm:"not null;size:32"`
	AppliedAt time.Time `gorm:"not null"`
	Details   string    `gorm:"type:text;null"`
}

// TableName specifies the table name for MigrationVersion
func (MigrationVersion) TableName() string {
	return "migration_versions"
}
