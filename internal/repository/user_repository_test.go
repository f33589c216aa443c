package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"usermanager/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Role{}, &model.User{}))
	require.NoError(t, NewRoleRepository(db).Seed(context.Background()))
	return db
}

func seedUsers(t *testing.T, repo UserRepository, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		roleID := model.RoleUserID
		if i%3 == 0 {
			roleID = model.RoleAdminID
		}
		err := repo.Create(context.Background(), &model.User{
			Username:     fmt.Sprintf("user%02d", i),
			Email:        fmt.Sprintf("user%02d@example.com", i),
			PasswordHash: "x",
			IsActive:     i%2 == 1,
			RoleID:       roleID,
		})
		require.NoError(t, err)
	}
}

func TestRoleRepository_SeedIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewRoleRepository(db)

	// Seed already ran once in newTestDB; running again must not fail or
	// duplicate rows.
	require.NoError(t, repo.Seed(context.Background()))

	admin, err := repo.FindByName(context.Background(), model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdminID, admin.ID)

	user, err := repo.FindByID(context.Background(), model.RoleUserID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, user.Name)

	var count int64
	require.NoError(t, db.Model(&model.Role{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := &model.User{
		Username:     "a",
		Email:        "a@x.com",
		PasswordHash: "hash",
		IsActive:     true,
		RoleID:       model.RoleAdminID,
	}
	require.NoError(t, repo.Create(ctx, user))
	require.NotZero(t, user.ID)

	found, err := repo.FindByEmailWithRole(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, model.RoleAdmin, found.Role.Name)

	_, err = repo.FindByEmailWithRole(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_DuplicateKey(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	first := &model.User{Username: "a", Email: "a@x.com", PasswordHash: "x", RoleID: model.RoleUserID}
	require.NoError(t, repo.Create(ctx, first))

	sameEmail := &model.User{Username: "b", Email: "a@x.com", PasswordHash: "x", RoleID: model.RoleUserID}
	assert.ErrorIs(t, repo.Create(ctx, sameEmail), gorm.ErrDuplicatedKey)

	sameUsername := &model.User{Username: "a", Email: "b@x.com", PasswordHash: "x", RoleID: model.RoleUserID}
	assert.ErrorIs(t, repo.Create(ctx, sameUsername), gorm.ErrDuplicatedKey)
}

func TestUserRepository_List(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()
	seedUsers(t, repo, 15)

	t.Run("pagination", func(t *testing.T) {
		users, total, err := repo.List(ctx, ListParams{Page: 2, Size: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
		assert.Len(t, users, 5)
	})

	t.Run("defaults applied", func(t *testing.T) {
		users, total, err := repo.List(ctx, ListParams{})
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
		assert.Len(t, users, 10)
		assert.Equal(t, uint(1), users[0].ID)
	})

	t.Run("case-insensitive search", func(t *testing.T) {
		users, total, err := repo.List(ctx, ListParams{Search: "USER01"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, users, 1)
		assert.Equal(t, "user01", users[0].Username)
	})

	t.Run("sort descending", func(t *testing.T) {
		users, _, err := repo.List(ctx, ListParams{Sort: "username", Order: "DESC", Size: 3})
		require.NoError(t, err)
		require.Len(t, users, 3)
		assert.Equal(t, "user15", users[0].Username)
	})

	t.Run("unknown sort column falls back to id", func(t *testing.T) {
		users, _, err := repo.List(ctx, ListParams{Sort: "password_hash; DROP TABLE users", Size: 2})
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, uint(1), users[0].ID)
	})

	t.Run("role preloaded", func(t *testing.T) {
		users, _, err := repo.List(ctx, ListParams{Size: 3})
		require.NoError(t, err)
		for _, u := range users {
			assert.NotEmpty(t, u.Role.Name)
		}
	})
}

func TestUserRepository_Counts(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()
	seedUsers(t, repo, 10)

	total, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)

	active, err := repo.CountByActive(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, int64(5), active)

	inactive, err := repo.CountByActive(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int64(5), inactive)

	byRole, err := repo.CountByRole(ctx)
	require.NoError(t, err)
	counts := map[string]int64{}
	for _, rc := range byRole {
		counts[rc.Name] = rc.Count
	}
	assert.Equal(t, int64(3), counts[model.RoleAdmin])
	assert.Equal(t, int64(7), counts[model.RoleUser])
}

func TestUserRepository_Delete(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()
	seedUsers(t, repo, 1)

	affected, err := repo.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, affected)
}
