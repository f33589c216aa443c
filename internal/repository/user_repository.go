package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"usermanager/internal/model"
)

// ListParams controls pagination, search and ordering for user listings.
type ListParams struct {
	Page   int
	Size   int
	Search string
	Sort   string
	Order  string
}

// RoleCount is a per-role user tally used by analytics.
type RoleCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Columns users may be sorted by. Anything else falls back to id.
var sortableColumns = map[string]bool{
	"id":         true,
	"username":   true,
	"email":      true,
	"is_active":  true,
	"role_id":    true,
	"created_at": true,
}

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uint) (int64, error)
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByIDWithRole(ctx context.Context, id uint) (*model.User, error)
	FindByEmailWithRole(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, params ListParams) ([]model.User, int64, error)
	CountAll(ctx context.Context) (int64, error)
	CountByActive(ctx context.Context, active bool) (int64, error)
	CountByRole(ctx context.Context) ([]RoleCount, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// Delete removes a user row and reports how many rows were affected.
func (r *userRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.User{}, id)
	return res.RowsAffected, res.Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIDWithRole(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Preload("Role").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmailWithRole(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Preload("Role").
		Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns one page of users matching params plus the total match count.
// Search is a case-insensitive substring match over username or email.
func (r *userRepository) List(ctx context.Context, params ListParams) ([]model.User, int64, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	size := params.Size
	if size < 1 {
		size = 10
	}

	query := r.db.WithContext(ctx).Model(&model.User{})
	if params.Search != "" {
		pattern := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sort := params.Sort
	if !sortableColumns[sort] {
		sort = "id"
	}
	order := "ASC"
	if strings.EqualFold(params.Order, "DESC") {
		order = "DESC"
	}

	var users []model.User
	err := query.Preload("Role").
		Order(sort + " " + order).
		Limit(size).
		Offset((page - 1) * size).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error
	return n, err
}

func (r *userRepository) CountByActive(ctx context.Context, active bool) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("is_active = ?", active).Count(&n).Error
	return n, err
}

// CountByRole groups users by role name.
func (r *userRepository) CountByRole(ctx context.Context) ([]RoleCount, error) {
	var counts []RoleCount
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Select("roles.name AS name, COUNT(users.id) AS count").
		Joins("JOIN roles ON roles.id = users.role_id").
		Group("roles.name").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}
