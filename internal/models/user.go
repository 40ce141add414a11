package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID                 uint64         `gorm:"primarykey" json:"id"`
	Email              string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash       string         `gorm:"type:varchar(255);not null" json:"-"`
	Name               string         `gorm:"type:varchar(255)" json:"name"`
	ProfilePicture     string         `gorm:"type:varchar(1024)" json:"profile_picture"`
	IsActive           bool           `gorm:"not null;default:true" json:"is_active"`
	LastLogin          *time.Time     `json:"last_login"`
	CurrentWorkspaceID *uint64        `gorm:"index" json:"current_workspace_id"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}
