package repository

import (
	"context"

	"github.com/yukikurage/workspace-rbac-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// FindByID finds a project by ID regardless of workspace
func (r *GormProjectRepository) FindByID(ctx context.Context, id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindInWorkspace finds a project only if it belongs to the workspace
func (r *GormProjectRepository) FindInWorkspace(ctx context.Context, workspaceID, projectID uint64) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Where("id = ? AND workspace_id = ?", projectID, workspaceID).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// ListByWorkspace lists the projects of a workspace, newest first
func (r *GormProjectRepository) ListByWorkspace(ctx context.Context, workspaceID uint64) ([]models.Project, error) {
	projects := make([]models.Project, 0)
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at DESC, id DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// Update saves a project
func (r *GormProjectRepository) Update(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

// DeleteCascade deletes a project and its tasks in one transaction
func (r *GormProjectRepository) DeleteCascade(ctx context.Context, id uint64) (*CascadeResult, error) {
	result := &CascadeResult{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := tx.Where("project_id = ?", id).Delete(&models.Task{})
		if tasks.Error != nil {
			return tasks.Error
		}
		result.Tasks = tasks.RowsAffected

		project := tx.Delete(&models.Project{}, id)
		if project.Error != nil {
			return project.Error
		}
		if project.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		result.Projects = project.RowsAffected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
