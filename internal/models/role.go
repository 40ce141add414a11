package models

import (
	"sort"
	"time"
)

type Permission string

const (
	PermissionCreateWorkspace         Permission = "CREATE_WORKSPACE"
	PermissionEditWorkspace           Permission = "EDIT_WORKSPACE"
	PermissionDeleteWorkspace         Permission = "DELETE_WORKSPACE"
	PermissionManageWorkspaceSettings Permission = "MANAGE_WORKSPACE_SETTINGS"

	PermissionAddMember        Permission = "ADD_MEMBER"
	PermissionChangeMemberRole Permission = "CHANGE_MEMBER_ROLE"
	PermissionRemoveMember     Permission = "REMOVE_MEMBER"

	PermissionCreateProject Permission = "CREATE_PROJECT"
	PermissionEditProject   Permission = "EDIT_PROJECT"
	PermissionDeleteProject Permission = "DELETE_PROJECT"

	PermissionCreateTask Permission = "CREATE_TASK"
	PermissionEditTask   Permission = "EDIT_TASK"
	PermissionDeleteTask Permission = "DELETE_TASK"

	PermissionViewOnly Permission = "VIEW_ONLY"
)

// AllPermissions is the closed permission vocabulary.
var AllPermissions = []Permission{
	PermissionCreateWorkspace,
	PermissionEditWorkspace,
	PermissionDeleteWorkspace,
	PermissionManageWorkspaceSettings,
	PermissionAddMember,
	PermissionChangeMemberRole,
	PermissionRemoveMember,
	PermissionCreateProject,
	PermissionEditProject,
	PermissionDeleteProject,
	PermissionCreateTask,
	PermissionEditTask,
	PermissionDeleteTask,
	PermissionViewOnly,
}

func (p Permission) IsValid() bool {
	for _, known := range AllPermissions {
		if p == known {
			return true
		}
	}
	return false
}

// Built-in role names created by the seed.
const (
	RoleOwner  = "OWNER"
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

type Role struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	Name        string       `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Description string       `gorm:"type:varchar(255)" json:"description"`
	Permissions []Permission `gorm:"type:text;serializer:json" json:"permissions"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// PermissionSet is an unordered set of permissions.
type PermissionSet map[Permission]struct{}

func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// PermissionSet returns the role's permissions as a set.
func (r *Role) PermissionSet() PermissionSet {
	if r == nil {
		return PermissionSet{}
	}
	return NewPermissionSet(r.Permissions...)
}

func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Missing returns the sorted permissions in required that s does not hold.
func (s PermissionSet) Missing(required PermissionSet) []Permission {
	missing := make([]Permission, 0)
	for p := range required {
		if !s.Has(p) {
			missing = append(missing, p)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}
