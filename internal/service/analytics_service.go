package service

import (
	"context"
	"fmt"
	"time"

	"usermanager/internal/cache"
	"usermanager/internal/repository"
)

const statsCacheTTL = time.Minute

// Breakdown is a labeled count in a stats response.
type Breakdown struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// Stats aggregates user counts for the dashboard.
type Stats struct {
	TotalUsers      int64       `json:"totalUsers"`
	StatusBreakdown []Breakdown `json:"statusBreakdown"`
	RoleBreakdown   []Breakdown `json:"roleBreakdown"`
}

// AnalyticsService computes dashboard statistics.
type AnalyticsService interface {
	Stats(ctx context.Context) (*Stats, error)
}

type analyticsService struct {
	userRepo repository.UserRepository
	cache    *cache.Client
}

// NewAnalyticsService builds an AnalyticsService.
func NewAnalyticsService(userRepo repository.UserRepository, cache *cache.Client) AnalyticsService {
	return &analyticsService{userRepo: userRepo, cache: cache}
}

// Stats returns total, active/inactive, and per-role user counts. Results are
// cached briefly; user mutations invalidate the entry.
func (s *analyticsService) Stats(ctx context.Context) (*Stats, error) {
	var cached Stats
	if s.cache.GetJSON(ctx, statsCacheKey, &cached) {
		return &cached, nil
	}

	total, err := s.userRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	active, err := s.userRepo.CountByActive(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("count active users: %w", err)
	}
	inactive, err := s.userRepo.CountByActive(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("count inactive users: %w", err)
	}
	roleCounts, err := s.userRepo.CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users by role: %w", err)
	}

	stats := &Stats{
		TotalUsers: total,
		StatusBreakdown: []Breakdown{
			{Name: "Active", Value: active},
			{Name: "Inactive", Value: inactive},
		},
	}
	for _, rc := range roleCounts {
		stats.RoleBreakdown = append(stats.RoleBreakdown, Breakdown{Name: rc.Name, Value: rc.Count})
	}

	s.cache.SetJSON(ctx, statsCacheKey, stats, statsCacheTTL)
	return stats, nil
}
