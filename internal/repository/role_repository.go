package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/workspace-rbac-api/internal/models"
	"gorm.io/gorm"
)

// GormRoleRepository is a GORM implementation of RoleRepository
type GormRoleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new RoleRepository
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &GormRoleRepository{db: db}
}

// FindByName finds a role by its unique name
func (r *GormRoleRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// List returns all roles ordered by name
func (r *GormRoleRepository) List(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// Upsert creates the role or replaces the description and permissions of the existing one
func (r *GormRoleRepository) Upsert(ctx context.Context, role *models.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Role
		err := tx.Where("name = ?", role.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(role).Error
		}
		if err != nil {
			return err
		}

		existing.Description = role.Description
		existing.Permissions = role.Permissions
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		*role = existing
		return nil
	})
}

// DeleteExcept removes every role whose name is not listed
func (r *GormRoleRepository) DeleteExcept(ctx context.Context, names []string) (int64, error) {
	query := r.db.WithContext(ctx)
	if len(names) > 0 {
		query = query.Where("name NOT IN ?", names)
	} else {
		query = query.Where("1 = 1")
	}
	result := query.Delete(&models.Role{})
	return result.RowsAffected, result.Error
}
