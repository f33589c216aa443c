package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"usermanager/internal/auth"
	apperrors "usermanager/internal/errors"
	"usermanager/internal/model"
	"usermanager/internal/repository"
)

// LoginResult is returned on successful admin login.
type LoginResult struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	AccessToken string `json:"accessToken"`
}

// AuthService handles authentication operations.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	RegisterAdmin(ctx context.Context, username, email, password string) (*model.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	roleRepo   repository.RoleRepository
	jwtService *auth.JWTService
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, roleRepo repository.RoleRepository, jwtService *auth.JWTService) AuthService {
	return &authService{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		jwtService: jwtService,
	}
}

// Login authenticates an admin user and issues an access token. Only accounts
// holding the admin role can log in through this path; the role check runs
// before the password check, matching the distinct not-found / not-admin /
// bad-password outcomes callers depend on. No attempt counter, no lockout.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmailWithRole(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if user.Role.Name != model.RoleAdmin {
		return nil, apperrors.ErrNotAdmin
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.Issue(user.ID, user.Role.Name)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Role:        user.Role.Name,
		AccessToken: token,
	}, nil
}

// RegisterAdmin creates a user with the admin role. It is a one-time bootstrap
// path: the transport layer leaves it unauthenticated, so deployments must
// gate it after first use.
func (s *authService) RegisterAdmin(ctx context.Context, username, email, password string) (*model.User, error) {
	adminRole, err := s.roleRepo.FindByName(ctx, model.RoleAdmin)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRoleNotSeeded
		}
		return nil, fmt.Errorf("find admin role: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		RoleID:       adminRole.ID,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateUser
		}
		return nil, fmt.Errorf("create admin user: %w", err)
	}

	return user, nil
}
