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

// ProjectService provides business logic for projects inside a workspace.
type ProjectService struct {
	projectRepo   repository.ProjectRepository
	workspaceRepo repository.WorkspaceRepository
	observer      CascadeObserver
	log           *logrus.Logger
}

// NewProjectService creates a new ProjectService. observer may be nil.
func NewProjectService(projectRepo repository.ProjectRepository, workspaceRepo repository.WorkspaceRepository, observer CascadeObserver, log *logrus.Logger) *ProjectService {
	return &ProjectService{
		projectRepo:   projectRepo,
		workspaceRepo: workspaceRepo,
		observer:      observer,
		log:           log,
	}
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Name        string
	Description string
	Emoji       string
	WorkspaceID uint64
	CreatedByID uint64
}

// UpdateProjectInput holds the fields to merge; nil fields are left unchanged.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Emoji       *string
}

// Create creates a project in an existing workspace.
func (s *ProjectService) Create(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidProjectName
	}

	if _, err := s.workspaceRepo.FindByID(ctx, input.WorkspaceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	emoji := strings.TrimSpace(input.Emoji)
	if emoji == "" {
		emoji = models.DefaultProjectEmoji
	}

	project := &models.Project{
		Name:        name,
		Description: input.Description,
		Emoji:       emoji,
		WorkspaceID: input.WorkspaceID,
		CreatedByID: input.CreatedByID,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return project, nil
}

// Get returns a project only if it belongs to the workspace.
func (s *ProjectService) Get(ctx context.Context, workspaceID, projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindInWorkspace(ctx, workspaceID, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// List returns the projects of a workspace.
func (s *ProjectService) List(ctx context.Context, workspaceID uint64) ([]models.Project, error) {
	projects, err := s.projectRepo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// Update merges the provided fields into the project.
func (s *ProjectService) Update(ctx context.Context, workspaceID, projectID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.Get(ctx, workspaceID, projectID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidProjectName
		}
		project.Name = name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Emoji != nil {
		project.Emoji = *input.Emoji
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return project, nil
}

// Delete removes the project and its tasks. Sibling projects are untouched.
func (s *ProjectService) Delete(ctx context.Context, workspaceID, projectID uint64) error {
	if _, err := s.Get(ctx, workspaceID, projectID); err != nil {
		return err
	}

	result, err := s.projectRepo.DeleteCascade(ctx, projectID)
	if s.observer != nil {
		s.observer.ObserveCascadeDelete("project", err)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"workspace_id": workspaceID,
		"project_id":   projectID,
		"tasks":        result.Tasks,
	}).Info("Project deleted")
	return nil
}
