package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	apierrors "github.com/yukikurage/workspace-rbac-api/internal/errors"
	"github.com/yukikurage/workspace-rbac-api/internal/models"
	"github.com/yukikurage/workspace-rbac-api/internal/repository"
	"gorm.io/gorm"
)

// DefaultRoles are the roles created by Seed.
var DefaultRoles = []models.Role{
	{
		Name:        models.RoleOwner,
		Description: "Full control of the workspace",
		Permissions: models.AllPermissions,
	},
	{
		Name:        models.RoleAdmin,
		Description: "Manages members, projects and tasks",
		Permissions: []models.Permission{
			models.PermissionAddMember,
			models.PermissionCreateProject,
			models.PermissionEditProject,
			models.PermissionDeleteProject,
			models.PermissionCreateTask,
			models.PermissionEditTask,
			models.PermissionDeleteTask,
			models.PermissionManageWorkspaceSettings,
			models.PermissionEditWorkspace,
			models.PermissionViewOnly,
		},
	},
	{
		Name:        models.RoleMember,
		Description: "Views the workspace and works on tasks",
		Permissions: []models.Permission{
			models.PermissionViewOnly,
			models.PermissionCreateTask,
			models.PermissionEditTask,
		},
	},
}

// RoleService manages the global role registry.
type RoleService struct {
	roleRepo repository.RoleRepository
	log      *logrus.Logger
}

// NewRoleService creates a new RoleService.
func NewRoleService(roleRepo repository.RoleRepository, log *logrus.Logger) *RoleService {
	return &RoleService{roleRepo: roleRepo, log: log}
}

// GetRole returns the role with the given name.
func (s *RoleService) GetRole(ctx context.Context, name string) (*models.Role, error) {
	role, err := s.roleRepo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.Wrapf(ErrRoleNotFound, "Role '%s' does not exist", name)
		}
		return nil, fmt.Errorf("failed to find role: %w", err)
	}
	return role, nil
}

// ListRoles returns every role.
func (s *RoleService) ListRoles(ctx context.Context) ([]models.Role, error) {
	roles, err := s.roleRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

// Seed upserts DefaultRoles. With reset, roles outside the default set are removed first.
func (s *RoleService) Seed(ctx context.Context, reset bool) error {
	if reset {
		names := make([]string, 0, len(DefaultRoles))
		for _, role := range DefaultRoles {
			names = append(names, role.Name)
		}
		removed, err := s.roleRepo.DeleteExcept(ctx, names)
		if err != nil {
			return fmt.Errorf("failed to reset roles: %w", err)
		}
		s.log.WithField("removed", removed).Info("Removed roles outside the default set")
	}

	for _, def := range DefaultRoles {
		role := def
		role.Permissions = append([]models.Permission(nil), def.Permissions...)
		if err := s.roleRepo.Upsert(ctx, &role); err != nil {
			return fmt.Errorf("failed to seed role %s: %w", role.Name, err)
		}
		s.log.WithFields(logrus.Fields{
			"role":        role.Name,
			"permissions": len(role.Permissions),
		}).Info("Seeded role")
	}
	return nil
}
