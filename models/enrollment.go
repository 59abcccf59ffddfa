package models

import (
	"time"

	"gorm.io/gorm"
)

// EnrollmentStatus defines the progress state of a student's enrollment
type EnrollmentStatus string

const (
	EnrollmentStatusNotStarted EnrollmentStatus = "not_started"
	EnrollmentStatusInProgress EnrollmentStatus = "in_progress"
	EnrollmentStatusCompleted  EnrollmentStatus = "completed"
)

// Enrollment is a student's progress record for one course at one partner.
// Invariant: ProgressPercent is 100 exactly when Status is completed.
type Enrollment struct {
	gorm.Model
	UserID    uint             `json:"user_id" gorm:"index;not null"`
	CourseID  uint             `json:"course_id" gorm:"index;not null"`
	PartnerID *uint            `json:"partner_id" gorm:"index"` // Seller; nil for platform-native courses
	Status    EnrollmentStatus `json:"status" gorm:"type:varchar(20);default:'not_started';index"`

	ProgressPercent  float64    `json:"progressPercent" gorm:"default:0"`
	TimeSpentSeconds int64      `json:"timeSpentSeconds" gorm:"default:0"`
	LastAccessedAt   *time.Time `json:"lastAccessedAt"`
	CompletedAt      *time.Time `json:"completedAt"`

	IsDeleted bool    `gorm:"default:false"`
	User      User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course    Course  `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Partner   Partner `gorm:"foreignKey:PartnerID" json:"-"`
}
