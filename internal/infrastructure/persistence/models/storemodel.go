package models

import (
	"time"

	"github.com/orris-inc/licensegate/internal/shared/constants"
)

// StoreModel is the persistence model of the quota ledger. Count and limit
// are stored as license_count and license_limit; a NULL limit is unlimited.
type StoreModel struct {
	ID              uint    `gorm:"primarykey"`
	Token           string  `gorm:"not null;size:64;uniqueIndex:idx_stores_token"`
	SecretMaterial  string  `gorm:"not null;size:64"`
	LicenseRef      *string `gorm:"size:191;uniqueIndex:idx_stores_license_ref"`
	Plan            string  `gorm:"not null;size:32;index:idx_stores_plan"`
	LicenseLimit    *int
	LicenseCount    int        `gorm:"not null;default:0"`
	Connected       bool       `gorm:"not null;index:idx_stores_connected"`
	OverLimit       bool       `gorm:"not null"`
	OverLimitAmount int        `gorm:"not null;default:0"`
	SiteURL         string     `gorm:"size:255"`
	SiteName        string     `gorm:"size:255"`
	ConnectedAt     *time.Time
	LastSeenAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int `gorm:"not null;default:1"`
}

// TableName specifies the table name for GORM
func (StoreModel) TableName() string {
	return constants.TableStores
}
