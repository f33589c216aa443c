package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"usermanager/internal/auth"
	"usermanager/internal/cache"
	apperrors "usermanager/internal/errors"
	"usermanager/internal/model"
	"usermanager/internal/repository"
)

const (
	userCacheTTL  = 5 * time.Minute
	statsCacheKey = "analytics:stats"
)

// CreateUserInput carries the fields for an admin-created user.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	RoleID   uint
	IsActive *bool
}

// UpdateUserInput carries a partial user update. Zero-value strings leave the
// field untouched; a nil IsActive keeps the stored flag.
type UpdateUserInput struct {
	Username string
	Email    string
	RoleID   uint
	IsActive *bool
}

// UserPage is one page of a user listing.
type UserPage struct {
	TotalItems  int64        `json:"totalItems"`
	Users       []model.User `json:"users"`
	TotalPages  int          `json:"totalPages"`
	CurrentPage int          `json:"currentPage"`
}

// UserService exposes admin CRUD over user accounts.
type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*model.User, error)
	Get(ctx context.Context, id uint) (*model.User, error)
	List(ctx context.Context, params repository.ListParams) (*UserPage, error)
	Update(ctx context.Context, id uint, input UpdateUserInput) error
	Delete(ctx context.Context, id uint) error
}

type userService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	cache    *cache.Client
}

// NewUserService builds a UserService with repositories and cache.
func NewUserService(userRepo repository.UserRepository, roleRepo repository.RoleRepository, cache *cache.Client) UserService {
	return &userService{userRepo: userRepo, roleRepo: roleRepo, cache: cache}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// invalidate drops cached entries made stale by a user mutation.
func (s *userService) invalidate(ctx context.Context, id uint) {
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	_ = s.cache.Delete(ctx, statsCacheKey)
}

// Create persists a new user with a hashed password. An unknown or unset role
// id falls back to the default role rather than failing.
func (s *userService) Create(ctx context.Context, input CreateUserInput) (*model.User, error) {
	roleID := input.RoleID
	if roleID == 0 {
		roleID = model.RoleUserID
	}
	if _, err := s.roleRepo.FindByID(ctx, roleID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find role: %w", err)
		}
		roleID = model.RoleUserID
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		IsActive:     isActive,
		RoleID:       roleID,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateUser
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.invalidate(ctx, user.ID)
	return user, nil
}

func (s *userService) Get(ctx context.Context, id uint) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.userRepo.FindByIDWithRole(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)
	return user, nil
}

func (s *userService) List(ctx context.Context, params repository.ListParams) (*UserPage, error) {
	users, total, err := s.userRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	size := params.Size
	if size < 1 {
		size = 10
	}

	return &UserPage{
		TotalItems:  total,
		Users:       users,
		TotalPages:  int(math.Ceil(float64(total) / float64(size))),
		CurrentPage: page,
	}, nil
}

// Update applies a partial update. The role changes only when the requested
// role id resolves to an existing role.
func (s *userService) Update(ctx context.Context, id uint, input UpdateUserInput) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	if input.Username != "" {
		user.Username = input.Username
	}
	if input.Email != "" {
		user.Email = input.Email
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.RoleID != 0 {
		if role, err := s.roleRepo.FindByID(ctx, input.RoleID); err == nil {
			user.RoleID = role.ID
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrDuplicateUser
		}
		return fmt.Errorf("update user: %w", err)
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *userService) Delete(ctx context.Context, id uint) error {
	affected, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrUserNotFound
	}

	s.invalidate(ctx, id)
	return nil
}
