package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"usermanager/internal/model"
	"usermanager/internal/repository"
)

func TestAnalyticsService_Stats(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("CountAll", mock.Anything).Return(int64(10), nil)
	mockUserRepo.On("CountByActive", mock.Anything, true).Return(int64(7), nil)
	mockUserRepo.On("CountByActive", mock.Anything, false).Return(int64(3), nil)
	mockUserRepo.On("CountByRole", mock.Anything).Return([]repository.RoleCount{
		{Name: model.RoleAdmin, Count: 2},
		{Name: model.RoleUser, Count: 8},
	}, nil)

	svc := NewAnalyticsService(mockUserRepo, nil)
	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.TotalUsers)
	assert.Equal(t, []Breakdown{
		{Name: "Active", Value: 7},
		{Name: "Inactive", Value: 3},
	}, stats.StatusBreakdown)
	assert.Equal(t, []Breakdown{
		{Name: model.RoleAdmin, Value: 2},
		{Name: model.RoleUser, Value: 8},
	}, stats.RoleBreakdown)
	mockUserRepo.AssertExpectations(t)
}
