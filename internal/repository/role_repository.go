package repository

import (
	"context"

	"gorm.io/gorm"

	"usermanager/internal/model"
)

// RoleRepository defines role persistence operations.
type RoleRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Role, error)
	FindByName(ctx context.Context, name string) (*model.Role, error)
	Seed(ctx context.Context) error
}

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository builds a GORM-backed repository.
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) FindByID(ctx context.Context, id uint) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).First(&role, id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// Seed creates the admin and user roles if absent. It is idempotent and must
// run before any user row is inserted.
func (r *roleRepository) Seed(ctx context.Context) error {
	roles := []model.Role{
		{ID: model.RoleAdminID, Name: model.RoleAdmin},
		{ID: model.RoleUserID, Name: model.RoleUser},
	}
	for _, role := range roles {
		var existing model.Role
		if err := r.db.WithContext(ctx).
			Where(model.Role{ID: role.ID}).
			Attrs(model.Role{Name: role.Name}).
			FirstOrCreate(&existing).Error; err != nil {
			return err
		}
	}
	return nil
}
