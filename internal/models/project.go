package models

import "time"

const DefaultProjectEmoji = "📊"

type Project struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Emoji       string    `gorm:"type:varchar(32)" json:"emoji"`
	WorkspaceID uint64    `gorm:"not null;index" json:"workspace_id"`
	CreatedByID uint64    `gorm:"not null;index" json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
