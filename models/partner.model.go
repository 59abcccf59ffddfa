package models

import (
	"time"

	"gorm.io/gorm"
)

// PartnerStatus defines the lifecycle state of a partner site
type PartnerStatus string

const (
	PartnerStatusActive    PartnerStatus = "active"
	PartnerStatusInactive  PartnerStatus = "inactive"
	PartnerStatusSuspended PartnerStatus = "suspended"
)

// Partner is an external learning site integrated via signed webhooks and polled HTTP endpoints
type Partner struct {
	gorm.Model
	PartnerID    string        `gorm:"type:varchar(100);uniqueIndex;not null" json:"partnerId"` // External identifier sent in X-Partner-Id
	Name         string        `gorm:"type:varchar(255);not null" json:"name"`
	Domain       string        `gorm:"type:varchar(255)" json:"domain"`
	SharedSecret string        `gorm:"type:varchar(255);not null" json:"-"` // Webhook signature secret, never serialized
	Status       PartnerStatus `gorm:"type:varchar(20);default:'active';index" json:"status"`

	// API endpoint URLs exposed by the partner
	CourseAccessURL            string `gorm:"type:text" json:"courseAccessUrl"`
	LearningProgressURL        string `gorm:"type:text" json:"learningProgressUrl"`
	CourseCatalogURL           string `gorm:"type:text" json:"courseCatalogUrl"`
	CertificateVerificationURL string `gorm:"type:text" json:"certificateVerificationUrl"`

	// Rate-limit policy applied when polling the partner
	RateLimitPerMinute int `gorm:"default:60" json:"rateLimitPerMinute"`
	RateLimitBurst     int `gorm:"default:10" json:"rateLimitBurst"`

	LastSyncAt *time.Time `json:"lastSyncAt"`
	IsDeleted  bool       `gorm:"default:false"`
}

func (Partner) TableName() string {
	return "partners"
}
