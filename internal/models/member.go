package models

import "time"

// Member joins a user to a workspace. RoleName references Role.Name rather
// than an enum so roles stay data driven.
type Member struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	UserID      uint64    `gorm:"not null;uniqueIndex:idx_members_user_workspace,priority:1" json:"user_id"`
	WorkspaceID uint64    `gorm:"not null;uniqueIndex:idx_members_user_workspace,priority:2;index" json:"workspace_id"`
	RoleName    string    `gorm:"type:varchar(50);not null" json:"role_name"`
	JoinedAt    time.Time `json:"joined_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
