package dto

import (
	"time"

	"github.com/yukikurage/workspace-rbac-api/internal/models"
	"github.com/yukikurage/workspace-rbac-api/internal/repository"
)

// WorkspaceDTO represents a workspace in API responses
type WorkspaceDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     uint64    `json:"owner_id"`
	InviteCode  string    `json:"invite_code,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WorkspaceWithRoleDTO represents a workspace with the caller's role
type WorkspaceWithRoleDTO struct {
	WorkspaceDTO
	RoleName string `json:"role_name"`
}

// MemberDTO represents a workspace member
type MemberDTO struct {
	UserID      uint64          `json:"user_id"`
	WorkspaceID uint64          `json:"workspace_id"`
	RoleName    string          `json:"role_name"`
	JoinedAt    time.Time       `json:"joined_at"`
	User        *UserSummaryDTO `json:"user,omitempty"`
}

// RoleDTO represents a role and its permissions
type RoleDTO struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Permissions []models.Permission `json:"permissions"`
}

// ToWorkspaceDTO converts a Workspace model to WorkspaceDTO. The invite code
// is only shown to callers allowed to share it.
func ToWorkspaceDTO(workspace models.Workspace, includeInviteCode bool) WorkspaceDTO {
	dto := WorkspaceDTO{
		ID:          workspace.ID,
		Name:        workspace.Name,
		Description: workspace.Description,
		OwnerID:     workspace.OwnerID,
		CreatedAt:   workspace.CreatedAt,
		UpdatedAt:   workspace.UpdatedAt,
	}
	if includeInviteCode {
		dto.InviteCode = workspace.InviteCode
	}
	return dto
}

// ToWorkspaceWithRoleDTO converts a listed workspace to DTO with the caller's role
func ToWorkspaceWithRoleDTO(row repository.WorkspaceWithRole) WorkspaceWithRoleDTO {
	return WorkspaceWithRoleDTO{
		WorkspaceDTO: ToWorkspaceDTO(row.Workspace, false),
		RoleName:     row.RoleName,
	}
}

// ToMemberDTO converts a member to DTO
func ToMemberDTO(member models.Member) MemberDTO {
	dto := MemberDTO{
		UserID:      member.UserID,
		WorkspaceID: member.WorkspaceID,
		RoleName:    member.RoleName,
		JoinedAt:    member.JoinedAt,
	}
	if member.User != nil {
		user := ToUserSummaryDTO(*member.User)
		dto.User = &user
	}
	return dto
}

// ToMemberDTOs converts a slice of members
func ToMemberDTOs(members []models.Member) []MemberDTO {
	dtos := make([]MemberDTO, len(members))
	for i, member := range members {
		dtos[i] = ToMemberDTO(member)
	}
	return dtos
}

// ToRoleDTO converts a Role model to RoleDTO
func ToRoleDTO(role models.Role) RoleDTO {
	perms := role.Permissions
	if perms == nil {
		perms = []models.Permission{}
	}
	return RoleDTO{
		Name:        role.Name,
		Description: role.Description,
		Permissions: perms,
	}
}
