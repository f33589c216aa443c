package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"usermanager/internal/auth"
	apperrors "usermanager/internal/errors"
	"usermanager/internal/model"
	"usermanager/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDWithRole(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmailWithRole(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, params repository.ListParams) ([]model.User, int64, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CountByActive(ctx context.Context, active bool) (int64, error) {
	args := m.Called(ctx, active)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CountByRole(ctx context.Context) ([]repository.RoleCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.RoleCount), args.Error(1)
}

// MockRoleRepository is a mock implementation of RoleRepository.
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) FindByID(ctx context.Context, id uint) (*model.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *MockRoleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *MockRoleRepository) Seed(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func adminUser(t *testing.T, password string) *model.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return &model.User{
		ID:           1,
		Username:     "a",
		Email:        "a@x.com",
		PasswordHash: hash,
		IsActive:     true,
		RoleID:       model.RoleAdminID,
		Role:         model.Role{ID: model.RoleAdminID, Name: model.RoleAdmin},
	}
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*testing.T, *MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful admin login",
			email:    "a@x.com",
			password: "pw",
			setupMock: func(t *testing.T, m *MockUserRepository) {
				m.On("FindByEmailWithRole", mock.Anything, "a@x.com").Return(adminUser(t, "pw"), nil)
			},
			expectedError: nil,
		},
		{
			name:     "user not found",
			email:    "missing@x.com",
			password: "pw",
			setupMock: func(t *testing.T, m *MockUserRepository) {
				m.On("FindByEmailWithRole", mock.Anything, "missing@x.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
		{
			name:     "non-admin rejected even with correct password",
			email:    "u@x.com",
			password: "pw",
			setupMock: func(t *testing.T, m *MockUserRepository) {
				user := adminUser(t, "pw")
				user.RoleID = model.RoleUserID
				user.Role = model.Role{ID: model.RoleUserID, Name: model.RoleUser}
				m.On("FindByEmailWithRole", mock.Anything, "u@x.com").Return(user, nil)
			},
			expectedError: apperrors.ErrNotAdmin,
		},
		{
			name:     "wrong password",
			email:    "a@x.com",
			password: "wrong",
			setupMock: func(t *testing.T, m *MockUserRepository) {
				m.On("FindByEmailWithRole", mock.Anything, "a@x.com").Return(adminUser(t, "pw"), nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(t, mockRepo)

			jwtService := auth.NewJWTService("test-secret")
			svc := NewAuthService(mockRepo, new(MockRoleRepository), jwtService)

			result, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				require.NotNil(t, result)
				assert.Equal(t, "a@x.com", result.Email)
				assert.Equal(t, model.RoleAdmin, result.Role)
				assert.NotEmpty(t, result.AccessToken)

				// The issued token decodes back to the same subject and role.
				claims, err := jwtService.Verify(result.AccessToken)
				require.NoError(t, err)
				assert.Equal(t, result.ID, claims.UserID)
				assert.Equal(t, result.Role, claims.Role)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_RegisterAdmin(t *testing.T) {
	tests := []struct {
		name          string
		setupMocks    func(*MockUserRepository, *MockRoleRepository)
		expectedError error
	}{
		{
			name: "successful registration",
			setupMocks: func(mUser *MockUserRepository, mRole *MockRoleRepository) {
				mRole.On("FindByName", mock.Anything, model.RoleAdmin).
					Return(&model.Role{ID: model.RoleAdminID, Name: model.RoleAdmin}, nil)
				mUser.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name: "admin role not seeded",
			setupMocks: func(mUser *MockUserRepository, mRole *MockRoleRepository) {
				mRole.On("FindByName", mock.Anything, model.RoleAdmin).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrRoleNotSeeded,
		},
		{
			name: "duplicate username or email",
			setupMocks: func(mUser *MockUserRepository, mRole *MockRoleRepository) {
				mRole.On("FindByName", mock.Anything, model.RoleAdmin).
					Return(&model.Role{ID: model.RoleAdminID, Name: model.RoleAdmin}, nil)
				mUser.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperrors.ErrDuplicateUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := new(MockUserRepository)
			mockRoleRepo := new(MockRoleRepository)
			tt.setupMocks(mockUserRepo, mockRoleRepo)

			svc := NewAuthService(mockUserRepo, mockRoleRepo, auth.NewJWTService("test-secret"))
			user, err := svc.RegisterAdmin(context.Background(), "a", "a@x.com", "pw")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, model.RoleAdminID, user.RoleID)
				assert.True(t, user.IsActive)
				assert.NotEmpty(t, user.PasswordHash)
				assert.NotEqual(t, "pw", user.PasswordHash)
				assert.True(t, auth.CheckPassword("pw", user.PasswordHash))
			}

			mockUserRepo.AssertExpectations(t)
			mockRoleRepo.AssertExpectations(t)
		})
	}
}
