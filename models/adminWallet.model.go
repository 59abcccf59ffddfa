package models

import (
	"gorm.io/gorm"
)

// AdminWallet holds the current PZO -> EDU conversion price. The most recent
// record by creation time is authoritative.
type AdminWallet struct {
	gorm.Model
	WalletAddress string  `gorm:"type:varchar(64)" json:"walletAddress"`
	EduPrice      float64 `gorm:"not null" json:"eduPrice"` // PZO per 1 EDU
	IsDeleted     bool    `gorm:"default:false"`
}

func (AdminWallet) TableName() string {
	return "admin_wallets"
}
