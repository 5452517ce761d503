package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/spec-kit/rail-complaints/internal/domain"
	"github.com/spec-kit/rail-complaints/internal/repository"
	apperrors "github.com/spec-kit/rail-complaints/pkg/util"
)

// MetricsService is the read-only aggregation pipeline behind the admin
// dashboard. Every call recomputes from current store state.
type MetricsService struct {
	dashboard repository.DashboardRepository
}

// NewMetricsService constructs the service.
func NewMetricsService(dashboard repository.DashboardRepository) *MetricsService {
	return &MetricsService{dashboard: dashboard}
}

// DashboardMetrics holds fleet-wide counters and rates.
type DashboardMetrics struct {
	Total              int64
	ByStatus           map[domain.ComplaintStatus]int64
	Last7Days          int64
	Last30Days         int64
	AvgResolutionHours float64
	ResolutionRate     float64
}

// DashboardCharts holds the grouped breakdowns.
type DashboardCharts struct {
	ByCategory           []repository.BucketCount
	ByStatus             []repository.BucketCount
	ByPriority           []repository.BucketCount
	Daily                []repository.DailyCount
	ResolutionByCategory []repository.CategoryResolution
}

// Metrics computes the counter snapshot. Rolling windows are anchored to the
// call instant, not calendar days.
func (s *MetricsService) Metrics(ctx context.Context) (*DashboardMetrics, error) {
	total, err := s.dashboard.TotalComplaints(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	byStatus, err := s.dashboard.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for _, status := range []domain.ComplaintStatus{
		domain.ComplaintStatusPending,
		domain.ComplaintStatusInProgress,
		domain.ComplaintStatusResolved,
		domain.ComplaintStatusRejected,
	} {
		if _, ok := byStatus[status]; !ok {
			byStatus[status] = 0
		}
	}

	now := time.Now()
	last7, err := s.dashboard.CountCreatedSince(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	last30, err := s.dashboard.CountCreatedSince(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats, err := s.dashboard.ResolutionStats(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	avgHours := 0.0
	if stats.Count > 0 {
		avgHours = round1(stats.AvgHours)
	}
	rate := 0.0
	if total > 0 {
		rate = round1(100 * float64(byStatus[domain.ComplaintStatusResolved]) / float64(total))
	}

	return &DashboardMetrics{
		Total:              total,
		ByStatus:           byStatus,
		Last7Days:          last7,
		Last30Days:         last30,
		AvgResolutionHours: avgHours,
		ResolutionRate:     rate,
	}, nil
}

// Charts computes the five grouped breakdowns.
func (s *MetricsService) Charts(ctx context.Context) (*DashboardCharts, error) {
	byCategory, err := s.dashboard.CountByCategory(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	statusCounts, err := s.dashboard.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byStatus := statusBuckets(statusCounts)

	byPriority, err := s.dashboard.CountByPriority(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	daily, err := s.dashboard.DailyCounts(ctx, time.Now().AddDate(0, 0, -30))
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	resolution, err := s.dashboard.ResolutionByCategory(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range resolution {
		resolution[i].AvgHours = round1(resolution[i].AvgHours)
	}
	sort.SliceStable(resolution, func(i, j int) bool {
		return resolution[i].AvgHours > resolution[j].AvgHours
	})

	return &DashboardCharts{
		ByCategory:           byCategory,
		ByStatus:             byStatus,
		ByPriority:           byPriority,
		Daily:                daily,
		ResolutionByCategory: resolution,
	}, nil
}

func statusBuckets(counts map[domain.ComplaintStatus]int64) []repository.BucketCount {
	buckets := make([]repository.BucketCount, 0, len(counts))
	for status, count := range counts {
		buckets = append(buckets, repository.BucketCount{Key: string(status), Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
	return buckets
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
