package repository

import (
	"context"

	"github.com/yukikurage/workspace-rbac-api/internal/models"
	"gorm.io/gorm"
)

// GormMemberRepository is a GORM implementation of MemberRepository
type GormMemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &GormMemberRepository{db: db}
}

// Create adds a membership
func (r *GormMemberRepository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Omit("User").Create(member).Error
}

// Find finds the membership of a user in a workspace
func (r *GormMemberRepository) Find(ctx context.Context, workspaceID, userID uint64) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Update saves a membership
func (r *GormMemberRepository) Update(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Omit("User").Save(member).Error
}

// Delete removes the membership of a user in a workspace
func (r *GormMemberRepository) Delete(ctx context.Context, workspaceID, userID uint64) error {
	result := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Delete(&models.Member{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List lists all members of a workspace in join order
func (r *GormMemberRepository) List(ctx context.Context, workspaceID uint64) ([]models.Member, error) {
	members := make([]models.Member, 0)
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("workspace_id = ?", workspaceID).
		Order("joined_at ASC, id ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// CountWithRole counts members holding roleName, excluding one user
func (r *GormMemberRepository) CountWithRole(ctx context.Context, workspaceID uint64, roleName string, excludeUserID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("workspace_id = ? AND role_name = ? AND user_id <> ?", workspaceID, roleName, excludeUserID).
		Count(&count).Error
	return count, err
}
