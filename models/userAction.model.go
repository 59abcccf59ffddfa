package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserActionType labels entries in the user action log
type UserActionType string

const (
	UserActionRewardCredited  UserActionType = "REWARD_CREDITED"
	UserActionCourseCompleted UserActionType = "COURSE_COMPLETED"
)

// UserAction is an append-only log of notable account events
type UserAction struct {
	gorm.Model
	ActionID   string            `gorm:"type:varchar(40);uniqueIndex;not null" json:"actionId"`
	UserID     uint              `gorm:"index;not null" json:"userId"`
	ActionType UserActionType    `gorm:"type:varchar(50);not null" json:"actionType"`
	Details    datatypes.JSONMap `json:"details"`
	IsDeleted  bool              `gorm:"default:false"`
	User       User              `gorm:"foreignKey:UserID" json:"-"`
}

func (UserAction) TableName() string {
	return "user_actions"
}
