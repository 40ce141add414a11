package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/workspace-rbac-api/internal/constants"
	"github.com/yukikurage/workspace-rbac-api/internal/models"
	"github.com/yukikurage/workspace-rbac-api/internal/repository"
	"github.com/yukikurage/workspace-rbac-api/internal/utils"
	"gorm.io/gorm"
)

// CascadeObserver is notified after every cascading delete.
type CascadeObserver interface {
	ObserveCascadeDelete(resource string, err error)
}

// WorkspaceService provides business logic for workspace operations.
type WorkspaceService struct {
	workspaceRepo repository.WorkspaceRepository
	observer      CascadeObserver
	log           *logrus.Logger
	now           func() time.Time
	newCode       func() (string, error)
}

// NewWorkspaceService creates a new WorkspaceService. observer may be nil.
func NewWorkspaceService(workspaceRepo repository.WorkspaceRepository, observer CascadeObserver, log *logrus.Logger) *WorkspaceService {
	return &WorkspaceService{
		workspaceRepo: workspaceRepo,
		observer:      observer,
		log:           log,
		now:           time.Now,
		newCode:       utils.GenerateInviteCode,
	}
}

// CreateWorkspaceInput represents parameters to create a new workspace.
type CreateWorkspaceInput struct {
	Name        string
	Description string
	OwnerID     uint64
}

// UpdateWorkspaceInput holds the fields to merge; nil fields are left unchanged.
type UpdateWorkspaceInput struct {
	Name        *string
	Description *string
}

// Create creates a workspace and makes the creator its OWNER member in the
// same transaction. Invite code collisions are retried with a fresh code.
func (s *WorkspaceService) Create(ctx context.Context, input CreateWorkspaceInput) (*models.Workspace, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidWorkspaceName
	}

	for attempt := 1; attempt <= constants.MaxCodeGenerationAttempts; attempt++ {
		inviteCode, err := s.newCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate invite code: %w", err)
		}

		workspace := &models.Workspace{
			Name:        name,
			Description: input.Description,
			OwnerID:     input.OwnerID,
			InviteCode:  inviteCode,
		}
		owner := &models.Member{
			RoleName: models.RoleOwner,
			JoinedAt: s.now().UTC(),
		}

		err = s.workspaceRepo.CreateWithOwner(ctx, workspace, owner)
		if err == nil {
			s.log.WithFields(logrus.Fields{
				"workspace_id": workspace.ID,
				"owner_id":     input.OwnerID,
			}).Info("Workspace created")
			return workspace, nil
		}
		if errors.Is(err, repository.ErrCreateWorkspace) && errors.Is(err, gorm.ErrDuplicatedKey) {
			s.log.WithField("attempt", attempt).Warn("Invite code collision, retrying")
			continue
		}
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return nil, ErrCodeExhausted
}

// Get returns a workspace by ID.
func (s *WorkspaceService) Get(ctx context.Context, workspaceID uint64) (*models.Workspace, error) {
	workspace, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}
	return workspace, nil
}

// ListForUser returns the workspaces the user belongs to with the user's role in each.
func (s *WorkspaceService) ListForUser(ctx context.Context, userID uint64) ([]repository.WorkspaceWithRole, error) {
	workspaces, err := s.workspaceRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return workspaces, nil
}

// Update merges the provided fields into the workspace.
func (s *WorkspaceService) Update(ctx context.Context, workspaceID uint64, input UpdateWorkspaceInput) (*models.Workspace, error) {
	workspace, err := s.Get(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidWorkspaceName
		}
		workspace.Name = name
	}
	if input.Description != nil {
		workspace.Description = *input.Description
	}

	if err := s.workspaceRepo.Update(ctx, workspace); err != nil {
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}
	return workspace, nil
}

// RegenerateInviteCode replaces the invite code so the old one stops working.
func (s *WorkspaceService) RegenerateInviteCode(ctx context.Context, workspaceID uint64) (*models.Workspace, error) {
	workspace, err := s.Get(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= constants.MaxCodeGenerationAttempts; attempt++ {
		inviteCode, err := s.newCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate invite code: %w", err)
		}
		workspace.InviteCode = inviteCode

		err = s.workspaceRepo.Update(ctx, workspace)
		if err == nil {
			return workspace, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("failed to update invite code: %w", err)
		}
	}
	return nil, ErrCodeExhausted
}

// Delete removes the workspace with all of its projects, tasks and memberships.
func (s *WorkspaceService) Delete(ctx context.Context, workspaceID uint64) error {
	if _, err := s.Get(ctx, workspaceID); err != nil {
		return err
	}

	result, err := s.workspaceRepo.DeleteCascade(ctx, workspaceID)
	s.observe("workspace", err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkspaceNotFound
		}
		return fmt.Errorf("failed to delete workspace: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"workspace_id": workspaceID,
		"projects":     result.Projects,
		"tasks":        result.Tasks,
		"members":      result.Members,
	}).Info("Workspace deleted")
	return nil
}

func (s *WorkspaceService) observe(resource string, err error) {
	if s.observer != nil {
		s.observer.ObserveCascadeDelete(resource, err)
	}
}
