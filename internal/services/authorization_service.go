package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/workspace-rbac-api/internal/models"
	"github.com/yukikurage/workspace-rbac-api/internal/repository"
	"gorm.io/gorm"
)

// Decision is the outcome of a permission check in one workspace.
type Decision struct {
	RoleName string
	IsMember bool
	Granted  models.PermissionSet
	Missing  []models.Permission
}

// Allowed reports whether every required permission is granted.
func (d *Decision) Allowed() bool {
	return len(d.Missing) == 0
}

// DenialMessage describes what the caller lacks and which role it resolved to.
func (d *Decision) DenialMessage() string {
	names := make([]string, len(d.Missing))
	for i, p := range d.Missing {
		names[i] = string(p)
	}
	roleInfo := "(No specific role or not a member of the workspace)"
	if d.IsMember && d.RoleName != "" {
		roleInfo = fmt.Sprintf("(Role: %s)", d.RoleName)
	}
	return fmt.Sprintf("User does not have the required permissions: %s. %s", strings.Join(names, ", "), roleInfo)
}

// AuthorizationService resolves a caller's permissions inside a workspace.
type AuthorizationService struct {
	members  *MemberService
	roleRepo repository.RoleRepository
	log      *logrus.Logger
}

// NewAuthorizationService creates a new AuthorizationService.
func NewAuthorizationService(members *MemberService, roleRepo repository.RoleRepository, log *logrus.Logger) *AuthorizationService {
	return &AuthorizationService{
		members:  members,
		roleRepo: roleRepo,
		log:      log,
	}
}

// Permissions returns the caller's role name, membership and permission set.
// A non-member or a member whose role is not registered holds no permissions.
func (s *AuthorizationService) Permissions(ctx context.Context, userID, workspaceID uint64) (string, bool, models.PermissionSet, error) {
	roleName, isMember, err := s.members.GetRoleName(ctx, userID, workspaceID)
	if err != nil {
		return "", false, nil, err
	}
	if !isMember {
		return "", false, models.PermissionSet{}, nil
	}

	role, err := s.roleRepo.FindByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.WithFields(logrus.Fields{
				"workspace_id": workspaceID,
				"user_id":      userID,
				"role":         roleName,
			}).Warn("Member references an unknown role; granting no permissions")
			return roleName, true, models.PermissionSet{}, nil
		}
		return "", false, nil, fmt.Errorf("failed to load role: %w", err)
	}
	return roleName, true, role.PermissionSet(), nil
}

// Authorize checks required against the caller's permissions in the workspace.
func (s *AuthorizationService) Authorize(ctx context.Context, userID, workspaceID uint64, required ...models.Permission) (*Decision, error) {
	roleName, isMember, granted, err := s.Permissions(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	return &Decision{
		RoleName: roleName,
		IsMember: isMember,
		Granted:  granted,
		Missing:  granted.Missing(models.NewPermissionSet(required...)),
	}, nil
}
