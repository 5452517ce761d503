package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rail-complaints/internal/api/dto"
	"github.com/spec-kit/rail-complaints/internal/repository"
	"github.com/spec-kit/rail-complaints/internal/service"
)

// DashboardHandler serves the admin metrics endpoints.
type DashboardHandler struct {
	service *service.MetricsService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(metricsService *service.MetricsService) *DashboardHandler {
	return &DashboardHandler{service: metricsService}
}

// Metrics GET /admin/dashboard/metrics.
func (h *DashboardHandler) Metrics(c *fiber.Ctx) error {
	metrics, err := h.service.Metrics(c.UserContext())
	if err != nil {
		return err
	}

	byStatus := make(map[string]int64, len(metrics.ByStatus))
	for status, count := range metrics.ByStatus {
		byStatus[string(status)] = count
	}
	return c.JSON(dto.OK(dto.MetricsResponse{
		Total:              metrics.Total,
		ByStatus:           byStatus,
		Last7Days:          metrics.Last7Days,
		Last30Days:         metrics.Last30Days,
		AvgResolutionHours: metrics.AvgResolutionHours,
		ResolutionRate:     metrics.ResolutionRate,
	}))
}

// Charts GET /admin/dashboard/charts.
func (h *DashboardHandler) Charts(c *fiber.Ctx) error {
	charts, err := h.service.Charts(c.UserContext())
	if err != nil {
		return err
	}

	resp := dto.ChartsResponse{
		ByCategory: chartBuckets(charts.ByCategory),
		ByStatus:   chartBuckets(charts.ByStatus),
		ByPriority: chartBuckets(charts.ByPriority),
	}
	for _, day := range charts.Daily {
		resp.Daily = append(resp.Daily, dto.DailyBucket{Date: day.Date, Count: day.Count})
	}
	for _, entry := range charts.ResolutionByCategory {
		resp.ResolutionByCategory = append(resp.ResolutionByCategory, dto.ResolutionBucket{
			Category: string(entry.Category),
			AvgHours: entry.AvgHours,
		})
	}
	return c.JSON(dto.OK(resp))
}

func chartBuckets(buckets []repository.BucketCount) []dto.ChartBucket {
	result := make([]dto.ChartBucket, 0, len(buckets))
	for _, b := range buckets {
		result = append(result, dto.ChartBucket{Key: b.Key, Count: b.Count})
	}
	return result
}
