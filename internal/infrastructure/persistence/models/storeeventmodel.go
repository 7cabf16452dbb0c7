package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/orris-inc/licensegate/internal/shared/constants"
)

// StoreEventModel is one append-only audit row. Rows are never updated.
type StoreEventModel struct {
	ID             uint    `gorm:"primarykey"`
	StoreToken     string  `gorm:"not null;size:64;index:idx_store_events_token_created,priority:1"`
	EventType      string  `gorm:"not null;size:32"`
	CountBefore    int     `gorm:"not null"`
	CountAfter     int     `gorm:"not null"`
	Allowed        bool    `gorm:"not null"`
	DenialReason   *string `gorm:"size:32"`
	LicenseKeyHash string  `gorm:"size:64"`
	ProductID      string  `gorm:"size:64"`
	SourceAddress  string  `gorm:"size:64"`
	Metadata       datatypes.JSON
	CreatedAt      time.Time `gorm:"index:idx_store_events_created;index:idx_store_events_token_created,priority:2"`
}

// TableName specifies the table name for GORM
func (StoreEventModel) TableName() string {
	return constants.TableStoreEvents
}
