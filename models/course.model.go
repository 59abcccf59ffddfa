package models

import "gorm.io/gorm"

type Course struct {
	gorm.Model
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `gorm:"type:varchar(100)" json:"category"`
	Level       string  `gorm:"type:varchar(50)" json:"level"`
	Credits     float64 `gorm:"default:0" json:"credits"`
	Status      string  `gorm:"type:varchar(20);default:'ACTIVE'" json:"status"`

	// Catalog-sync identity: which partner offers this course and under which id
	PartnerID        uint   `gorm:"index" json:"partnerId"`
	ExternalCourseID string `gorm:"type:varchar(100);index" json:"externalCourseId"`

	IsDeleted bool `gorm:"default:false"`
}
