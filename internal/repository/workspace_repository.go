package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/workspace-rbac-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrCreateWorkspace is returned when creating the workspace row fails inside the create transaction.
	ErrCreateWorkspace = errors.New("workspace repository: create workspace failed")
	// ErrCreateOwnerMember is returned when creating the owner membership fails inside the create transaction.
	ErrCreateOwnerMember = errors.New("workspace repository: create owner membership failed")
)

// GormWorkspaceRepository is a GORM implementation of WorkspaceRepository
type GormWorkspaceRepository struct {
	db *gorm.DB
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(db *gorm.DB) WorkspaceRepository {
	return &GormWorkspaceRepository{db: db}
}

// CreateWithOwner creates a workspace and the owner membership atomically.
// The wrapped errors keep the driver error so callers can still match gorm.ErrDuplicatedKey.
func (r *GormWorkspaceRepository) CreateWithOwner(ctx context.Context, workspace *models.Workspace, owner *models.Member) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(workspace).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateWorkspace, err)
		}

		owner.WorkspaceID = workspace.ID
		owner.UserID = workspace.OwnerID

		if err := tx.Create(owner).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateOwnerMember, err)
		}

		return nil
	})
}

// FindByID finds a workspace by ID
func (r *GormWorkspaceRepository) FindByID(ctx context.Context, id uint64) (*models.Workspace, error) {
	var workspace models.Workspace
	if err := r.db.WithContext(ctx).First(&workspace, id).Error; err != nil {
		return nil, err
	}
	return &workspace, nil
}

// FindByInviteCode finds a workspace by invite code
func (r *GormWorkspaceRepository) FindByInviteCode(ctx context.Context, code string) (*models.Workspace, error) {
	var workspace models.Workspace
	if err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&workspace).Error; err != nil {
		return nil, err
	}
	return &workspace, nil
}

// ListForUser lists the workspaces a user is a member of, oldest membership first
func (r *GormWorkspaceRepository) ListForUser(ctx context.Context, userID uint64) ([]WorkspaceWithRole, error) {
	rows := make([]WorkspaceWithRole, 0)
	err := r.db.WithContext(ctx).
		Table("workspaces").
		Select("workspaces.*, members.role_name").
		Joins("JOIN members ON members.workspace_id = workspaces.id").
		Where("members.user_id = ?", userID).
		Order("members.joined_at ASC, workspaces.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Update saves a workspace
func (r *GormWorkspaceRepository) Update(ctx context.Context, workspace *models.Workspace) error {
	return r.db.WithContext(ctx).Save(workspace).Error
}

// DeleteCascade removes tasks, projects and memberships before the workspace
// itself and clears users that had it selected. Nothing is removed when any
// step fails.
func (r *GormWorkspaceRepository) DeleteCascade(ctx context.Context, id uint64) (*CascadeResult, error) {
	result := &CascadeResult{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		projectIDs := tx.Model(&models.Project{}).Select("id").Where("workspace_id = ?", id)

		tasks := tx.Where("workspace_id = ? OR project_id IN (?)", id, projectIDs).Delete(&models.Task{})
		if tasks.Error != nil {
			return tasks.Error
		}
		result.Tasks = tasks.RowsAffected

		projects := tx.Where("workspace_id = ?", id).Delete(&models.Project{})
		if projects.Error != nil {
			return projects.Error
		}
		result.Projects = projects.RowsAffected

		members := tx.Where("workspace_id = ?", id).Delete(&models.Member{})
		if members.Error != nil {
			return members.Error
		}
		result.Members = members.RowsAffected

		if err := tx.Model(&models.User{}).
			Where("current_workspace_id = ?", id).
			Update("current_workspace_id", nil).Error; err != nil {
			return err
		}

		workspace := tx.Delete(&models.Workspace{}, id)
		if workspace.Error != nil {
			return workspace.Error
		}
		if workspace.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
