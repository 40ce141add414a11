package models

import "time"

type TaskStatus string

const (
	TaskStatusBacklog    TaskStatus = "BACKLOG"
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusInReview   TaskStatus = "IN_REVIEW"
	TaskStatusDone       TaskStatus = "DONE"
)

// TaskStatuses lists every status in workflow order.
var TaskStatuses = []TaskStatus{
	TaskStatusBacklog,
	TaskStatusTodo,
	TaskStatusInProgress,
	TaskStatusInReview,
	TaskStatusDone,
}

func (s TaskStatus) IsValid() bool {
	for _, status := range TaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}

// Task belongs to a project. WorkspaceID is a copy of the project's
// workspace and is rewritten from the project on every save.
type Task struct {
	ID           uint64       `gorm:"primarykey" json:"id"`
	TaskCode     string       `gorm:"type:varchar(32);uniqueIndex;not null" json:"task_code"`
	Title        string       `gorm:"type:varchar(255);not null" json:"title"`
	Description  string       `gorm:"type:text" json:"description"`
	Status       TaskStatus   `gorm:"type:varchar(20);not null;default:'TODO';index" json:"status"`
	Priority     TaskPriority `gorm:"type:varchar(20);not null;default:'MEDIUM';index" json:"priority"`
	DueDate      *time.Time   `gorm:"index" json:"due_date"`
	ProjectID    uint64       `gorm:"not null;index" json:"project_id"`
	WorkspaceID  uint64       `gorm:"not null;index" json:"workspace_id"`
	CreatedByID  uint64       `gorm:"not null" json:"created_by_id"`
	AssignedToID *uint64      `gorm:"index" json:"assigned_to_id"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	// Relations
	Assignee *User `gorm:"foreignKey:AssignedToID" json:"assignee,omitempty"`
}
