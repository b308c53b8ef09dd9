// Package analytics serves the dashboard: headline counts, outstanding
// balance and the monthly revenue series, cached in Redis behind a global
// version number.
package analytics

import (
	"context"
	"time"
)

const (
	defaultRevenueMonths = 6
	maxRevenueMonths     = 36
)

// Service computes dashboard payloads through the cache.
type Service struct {
	repo  Repository
	cache *Cache

	now func() time.Time
}

// NewService constructs the analytics service. cache may be nil, in which
// case every request hits the database.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// Bump invalidates all cached dashboard payloads.
func (s *Service) Bump(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	key, err := s.cache.BuildKey(ctx, keySummary())
	if err != nil {
		return nil, err
	}
	var summary Summary
	err = s.cache.FetchJSON(ctx, key, &summary, func(ctx context.Context) (any, error) {
		return s.repo.Summary(ctx, s.now())
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *Service) Revenue(ctx context.Context, months int) ([]MonthRevenue, error) {
	if months <= 0 {
		months = defaultRevenueMonths
	}
	if months > maxRevenueMonths {
		months = maxRevenueMonths
	}

	key, err := s.cache.BuildKey(ctx, keyRevenue(months))
	if err != nil {
		return nil, err
	}
	var series []MonthRevenue
	err = s.cache.FetchJSON(ctx, key, &series, func(ctx context.Context) (any, error) {
		now := s.now()
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(months - 1), 0)
		return s.repo.Revenue(ctx, from)
	})
	if err != nil {
		return nil, err
	}
	return series, nil
}
